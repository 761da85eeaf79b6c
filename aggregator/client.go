// Package aggregator is the HTTP client for the rollup aggregator. Every
// call is context-scoped JSON over a single base URL; non-2xx responses
// surface as HTTPError with the server's body kept verbatim.
package aggregator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/intmax-network/go-rollup-wallet/prover"
	"github.com/intmax-network/go-rollup-wallet/types"
)

// IncompatibleError signals an aggregator that is not the service we
// speak, or one running an incompatible protocol version.
type IncompatibleError struct {
	Name    string
	Version string
}

func (e *IncompatibleError) Error() string {
	return fmt.Sprintf("incompatible aggregator %s %s (want %s %s.x)",
		e.Name, e.Version, types.AggregatorName, types.CompatibleVersionPrefix)
}

// HTTPError is any non-2xx aggregator response. Body is forwarded verbatim
// so callers can surface the server's own message.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("aggregator returned %d: %s", e.Status, e.Body)
}

// Client talks to one aggregator.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for the aggregator at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method string, path string, query url.Values, body interface{}, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, endpoint, reader)
	if err != nil {
		return err
	}
	req = req.WithContext(ctx)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Debug().Str("method", method).Str("endpoint", endpoint).Msg("Calling aggregator")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{Status: resp.StatusCode, Body: string(payload)}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(payload, out)
}

// Info fetches the aggregator's name and version.
func (c *Client) Info(ctx context.Context) (InfoResponse, error) {
	var info InfoResponse
	err := c.do(ctx, http.MethodGet, "/", nil, nil, &info)
	return info, err
}

// CheckCompatibility rejects aggregators we cannot talk to. The protocol
// has no cross-version compatibility, so only the pinned minor is
// accepted.
func (c *Client) CheckCompatibility(ctx context.Context) error {
	info, err := c.Info(ctx)
	if err != nil {
		return err
	}
	if info.Name != types.AggregatorName || !strings.HasPrefix(info.Version, types.CompatibleVersionPrefix) {
		return &IncompatibleError{Name: info.Name, Version: info.Version}
	}
	return nil
}

// RegisterAccount announces a public key to the aggregator and returns the
// assigned address.
func (c *Client) RegisterAccount(ctx context.Context, publicKey types.Hash) (types.Address, error) {
	var resp RegisterAccountResponse
	err := c.do(ctx, http.MethodPost, "/account/register", nil, RegisterAccountRequest{PublicKey: publicKey}, &resp)
	return resp.Address, err
}

// AddDeposits mints assets through the test faucet endpoint.
func (c *Client) AddDeposits(ctx context.Context, deposits []DepositInfo) error {
	return c.do(ctx, http.MethodPost, "/test/deposit/add", nil, AddDepositsRequest{DepositInfo: deposits}, nil)
}

// SendTransaction submits a user transition proof and returns the
// transaction hash the aggregator accepted it under.
func (c *Client) SendTransaction(ctx context.Context, proof prover.UserTransitionProof) (types.Hash, error) {
	var resp SendTransactionResponse
	err := c.do(ctx, http.MethodPost, "/tx/send", nil, SendTransactionRequest{UserTxProof: proof}, &resp)
	return resp.TxHash, err
}

// BroadcastTransaction hands receivers the witnesses they need to merge.
func (c *Client) BroadcastTransaction(ctx context.Context, req BroadcastTransactionRequest) error {
	return c.do(ctx, http.MethodPost, "/tx/broadcast", nil, req, nil)
}

// TransactionReceipt fetches the inclusion witnesses of a proposed
// transaction.
func (c *Client) TransactionReceipt(ctx context.Context, userAddress types.Address, txHash types.Hash) (TransactionReceiptResponse, error) {
	query := url.Values{}
	query.Set("user_address", userAddress.Hex())
	query.Set("tx_hash", txHash.Hex())
	var resp TransactionReceiptResponse
	err := c.do(ctx, http.MethodGet, "/tx/receipt", query, nil, &resp)
	return resp, err
}

// SendReceivedSignature posts the sender's signature over the proposed
// world state, confirming the transaction.
func (c *Client) SendReceivedSignature(ctx context.Context, txHash types.Hash, signature prover.SignatureProof) error {
	return c.do(ctx, http.MethodPost, "/signed-diff/send", nil, SendSignatureRequest{TxHash: txHash, ReceivedSignature: signature}, nil)
}

// ProposeBlock asks the aggregator to freeze pending transactions into a
// proposal and returns the proposed world-state root.
func (c *Client) ProposeBlock(ctx context.Context) (types.Hash, error) {
	var resp ProposeBlockResponse
	err := c.do(ctx, http.MethodPost, "/block/propose", nil, struct{}{}, &resp)
	return resp.NewWorldStateRoot, err
}

// ApproveBlock finalizes the current proposal and returns the approved
// block.
func (c *Client) ApproveBlock(ctx context.Context) (types.BlockInfo, error) {
	var resp ApproveBlockResponse
	err := c.do(ctx, http.MethodPost, "/block/approve", nil, struct{}{}, &resp)
	return resp.NewBlock, err
}

// LatestBlock returns the most recently approved block.
func (c *Client) LatestBlock(ctx context.Context) (types.BlockInfo, error) {
	var resp LatestBlockResponse
	err := c.do(ctx, http.MethodGet, "/block/latest", nil, nil, &resp)
	return resp.Block, err
}

// Blocks lists approved blocks in (since, until], plus the server's
// current watermark.
func (c *Client) Blocks(ctx context.Context, since, until uint32) ([]types.BlockInfo, uint32, error) {
	query := url.Values{}
	query.Set("since", types.BlockNumber(since).String())
	query.Set("until", types.BlockNumber(until).String())
	var resp BlocksResponse
	if err := c.do(ctx, http.MethodGet, "/block", query, nil, &resp); err != nil {
		return nil, 0, err
	}
	return resp.Blocks, uint32(resp.LatestBlockNumber), nil
}

// BlockDetail returns the full contents of one block.
func (c *Client) BlockDetail(ctx context.Context, blockNumber uint32) (types.BlockInfo, error) {
	query := url.Values{}
	query.Set("block_number", types.BlockNumber(blockNumber).String())
	var resp BlockDetailResponse
	err := c.do(ctx, http.MethodGet, "/block/detail", query, nil, &resp)
	return resp.BlockDetails, err
}

// ReceivedAssets lists the proofs of assets sent to userAddress in blocks
// after since, plus the server's current watermark.
func (c *Client) ReceivedAssets(ctx context.Context, userAddress types.Address, since uint32) ([]*types.ReceivedAssetProof, uint32, error) {
	query := url.Values{}
	query.Set("user_address", userAddress.Hex())
	query.Set("since", types.BlockNumber(since).String())
	var resp ReceivedAssetsResponse
	if err := c.do(ctx, http.MethodGet, "/asset/received", query, nil, &resp); err != nil {
		return nil, 0, err
	}
	return resp.Proofs, uint32(resp.LatestBlockNumber), nil
}
