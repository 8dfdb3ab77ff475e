package erc20

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/capezk/pkg/ledger"
	"github.com/yourorg/capezk/pkg/slot"
)

var (
	token  = ledger.HexToErc20Code("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	holder = ledger.HexToEthereumAddr("0x00000000219ab540356cBB839Cbe05303d7705Fa")
)

var (
	testStateRoot   = common.HexToHash("0x5d6cded585e73c4e322c30c2f782a336316f17dd85a4863b9d838d2d4b8b3008")
	testStorageHash = common.HexToHash("0x1f2e3d4c5b6a79880123456789abcdef0123456789abcdef0123456789abcdef")
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

/* ---------------- fixture node ---------------- */

// serveNode answers eth_call, eth_getStorageAt, eth_getProof and
// eth_getBlockByNumber like a node holding one token contract. Calls for anything else return a JSON-RPC error.
func serveNode(t *testing.T, balance *big.Int, decimals uint8) *httptest.Server {
	t.Helper()

	word := func(v *big.Int) string { return hexutil.Encode(common.LeftPadBytes(v.Bytes(), 32)) }
	balanceSel := hexutil.Encode(parsedABI.Methods["balanceOf"].ID)
	decimalsSel := hexutil.Encode(parsedABI.Methods["decimals"].ID)
	wantSlot := slot.MappingKey(common.Address(holder), 0).Hex()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		switch req.Method {
		case "eth_call":
			var msg struct {
				To    common.Address `json:"to"`
				Input hexutil.Bytes  `json:"input"`
				Data  hexutil.Bytes  `json:"data"`
			}
			require.NoError(t, json.Unmarshal(req.Params[0], &msg))
			input := msg.Input
			if len(input) == 0 {
				input = msg.Data
			}
			require.Equal(t, common.Address(token), msg.To)
			switch {
			case strings.HasPrefix(hexutil.Encode(input), balanceSel):
				resp["result"] = word(balance)
			case strings.HasPrefix(hexutil.Encode(input), decimalsSel):
				resp["result"] = word(big.NewInt(int64(decimals)))
			default:
				resp["error"] = map[string]any{"code": -32000, "message": "execution reverted"}
			}
		case "eth_getStorageAt":
			var key string
			require.NoError(t, json.Unmarshal(req.Params[1], &key))
			if strings.EqualFold(key, wantSlot) {
				resp["result"] = word(balance)
			} else {
				resp["result"] = word(new(big.Int))
			}
		case "eth_getProof":
			var keys []string
			require.NoError(t, json.Unmarshal(req.Params[1], &keys))
			require.Len(t, keys, 1)
			value := new(big.Int)
			if strings.EqualFold(keys[0], wantSlot) {
				value = balance
			}
			resp["result"] = map[string]any{
				"accountProof": []string{"0xf90211a0", "0xf8518080"},
				"storageHash":  testStorageHash.Hex(),
				"storageProof": []map[string]any{{
					"key":   keys[0],
					"value": hexutil.EncodeBig(value),
					"proof": []string{"0xe2a0"},
				}},
			}
		case "eth_getBlockByNumber":
			resp["result"] = map[string]any{"stateRoot": testStateRoot.Hex()}
		default:
			resp["error"] = map[string]any{"code": -32601, "message": "method not found"}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func dialTest(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	eth, err := ethclient.Dial(srv.URL)
	require.NoError(t, err)
	t.Cleanup(eth.Close)
	return NewClient(eth)
}

/* ---------------- tests ---------------- */

func TestBalanceOf(t *testing.T) {
	want, _ := new(big.Int).SetString("1000000000000000000000", 10)
	srv := serveNode(t, want, 18)
	defer srv.Close()

	got, err := dialTest(t, srv).BalanceOf(context.Background(), token, holder)
	require.NoError(t, err)
	require.Equal(t, 0, want.Cmp(got))
}

func TestDecimals(t *testing.T) {
	srv := serveNode(t, big.NewInt(1), 6)
	defer srv.Close()

	d, err := dialTest(t, srv).Decimals(context.Background(), token)
	require.NoError(t, err)
	require.EqualValues(t, 6, d)
}

func TestStorageBalance(t *testing.T) {
	srv := serveNode(t, big.NewInt(4242), 18)
	defer srv.Close()
	c := dialTest(t, srv)

	got, err := c.StorageBalance(context.Background(), token, holder, 0)
	require.NoError(t, err)
	require.EqualValues(t, 4242, got.Int64())

	// a different mapping index lands on an empty slot
	got, err = c.StorageBalance(context.Background(), token, holder, 1)
	require.NoError(t, err)
	require.Zero(t, got.Sign())
}

func TestCallError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0", "id": req.ID,
			"error": map[string]any{"code": -32000, "message": "execution reverted"},
		})
	}))
	defer srv.Close()

	_, err := dialTest(t, srv).BalanceOf(context.Background(), token, holder)
	require.ErrorContains(t, err, "execution reverted")
}

func TestBalanceProof(t *testing.T) {
	srv := serveNode(t, big.NewInt(777), 18)
	defer srv.Close()

	p, err := dialTest(t, srv).BalanceProof(context.Background(), token, holder, 0, 19_000_000)
	require.NoError(t, err)
	require.EqualValues(t, 19_000_000, p.Block)
	require.Equal(t, testStateRoot, p.StateRoot)
	require.Equal(t, testStorageHash, p.StorageHash)
	require.Len(t, p.AccountProof, 2)
	require.Equal(t, slot.MappingKey(common.Address(holder), 0), p.StorageProof[0].Key)
	require.EqualValues(t, 777, p.Balance().Int64())
}
