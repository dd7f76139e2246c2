package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Shared HTTP client for health probes, with connection pooling.
var (
	probeClient *http.Client
	probeOnce   sync.Once
)

func getProbeClient() *http.Client {
	probeOnce.Do(func() {
		probeClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        50,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	})
	return probeClient
}

type jsonRPCRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type jsonRPCResponse struct {
	Jsonrpc string           `json:"jsonrpc"`
	Result  interface{}      `json:"result"`
	Error   *json.RawMessage `json:"error"`
	ID      int              `json:"id"`
}

// RPCCheckResult is the outcome of probing one RPC endpoint.
type RPCCheckResult struct {
	URL     string        `json:"url"`
	OK      bool          `json:"ok"`
	Latency time.Duration `json:"latency"`
	Error   string        `json:"error,omitempty"`
}

// checkRPC probes one endpoint with an eth_blockNumber call.
func checkRPC(ctx context.Context, url string, timeout time.Duration) RPCCheckResult {
	start := time.Now()
	fail := func(err error) RPCCheckResult {
		return RPCCheckResult{URL: url, OK: false, Latency: time.Since(start), Error: err.Error()}
	}

	body, _ := json.Marshal(jsonRPCRequest{
		Jsonrpc: "2.0",
		ID:      1,
		Method:  "eth_blockNumber",
		Params:  []interface{}{},
	})

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fail(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := getProbeClient().Do(req)
	if err != nil {
		return fail(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fail(fmt.Errorf("status code: %d", resp.StatusCode))
	}
	var rpcResp jsonRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fail(err)
	}
	if rpcResp.Error != nil {
		return fail(fmt.Errorf("rpc error: %s", string(*rpcResp.Error)))
	}
	return RPCCheckResult{URL: url, OK: true, Latency: time.Since(start)}
}

// CheckRPCList probes all endpoints concurrently and returns one result per
// URL, in input order.
func CheckRPCList(ctx context.Context, urls []string, timeout time.Duration) []RPCCheckResult {
	results := make([]RPCCheckResult, len(urls))
	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			results[i] = checkRPC(ctx, url, timeout)
		}(i, url)
	}
	wg.Wait()
	return results
}
