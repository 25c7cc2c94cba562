package todo

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/soltodo/service-layer/internal/chain"
	"github.com/soltodo/service-layer/internal/errors"
	"github.com/soltodo/service-layer/internal/logging"
)

// fakeNode is a stub Solana RPC node for builder/submitter tests.
type fakeNode struct {
	blockhash   string
	profile     []byte // nil means the account does not exist
	sentTx      string
	signature   string
	failMethods map[string]bool
}

func (n *fakeNode) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
			ID     int               `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode rpc request: %v", err)
		}

		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		switch {
		case n.failMethods[req.Method]:
			resp["error"] = map[string]interface{}{"code": -32000, "message": "node is behind"}
		case req.Method == "getLatestBlockhash":
			resp["result"] = map[string]interface{}{
				"value": map[string]interface{}{"blockhash": n.blockhash, "lastValidBlockHeight": 100},
			}
		case req.Method == "getAccountInfo":
			if n.profile == nil {
				resp["result"] = map[string]interface{}{"value": nil}
			} else {
				resp["result"] = map[string]interface{}{
					"value": map[string]interface{}{
						"data": []string{base64.StdEncoding.EncodeToString(n.profile), "base64"},
					},
				}
			}
		case req.Method == "sendTransaction":
			var tx string
			_ = json.Unmarshal(req.Params[0], &tx)
			n.sentTx = tx
			resp["result"] = n.signature
		default:
			t.Fatalf("unexpected rpc method %s", req.Method)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})
}

func profileAccount(authority solana.PublicKey, todoCount, lastTodoID uint64) []byte {
	data := append([]byte{}, authority.Bytes()...)
	data = binary.LittleEndian.AppendUint64(data, todoCount)
	data = binary.LittleEndian.AppendUint64(data, lastTodoID)
	return data
}

func newTestService(t *testing.T, node *fakeNode) (*Service, func()) {
	t.Helper()
	srv := httptest.NewServer(node.handler(t))

	client, err := chain.NewClient(chain.Config{RPCURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	svc, err := NewService(client, testProgramID.String(), logging.Default())
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}
	return svc, srv.Close
}

func decodeTx(t *testing.T, serialized string) *solana.Transaction {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(serialized)
	if err != nil {
		t.Fatalf("base64 decode: %v", err)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		t.Fatalf("deserialize transaction: %v", err)
	}
	return tx
}

func instructionAccounts(t *testing.T, tx *solana.Transaction) []solana.PublicKey {
	t.Helper()
	if len(tx.Message.Instructions) != 1 {
		t.Fatalf("instructions = %d, want 1", len(tx.Message.Instructions))
	}
	var keys []solana.PublicKey
	for _, idx := range tx.Message.Instructions[0].Accounts {
		keys = append(keys, tx.Message.AccountKeys[idx])
	}
	return keys
}

func TestPrepareCreateRoundTrip(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	node := &fakeNode{
		blockhash: solana.NewWallet().PublicKey().String(),
		profile:   profileAccount(owner, 2, 4),
	}
	svc, done := newTestService(t, node)
	defer done()

	prepared, err := svc.PrepareCreate(context.Background(), owner.String(), CreateTodoRequest{
		Description: "Buy milk",
		DueDate:     1700000000,
	})
	if err != nil {
		t.Fatalf("PrepareCreate error: %v", err)
	}
	if prepared.TransactionType != TxCreateTodo {
		t.Fatalf("transaction_type = %s, want %s", prepared.TransactionType, TxCreateTodo)
	}
	if !strings.Contains(prepared.Metadata, "Buy milk") {
		t.Fatalf("metadata = %q, want original request", prepared.Metadata)
	}

	tx := decodeTx(t, prepared.SerializedTransaction)

	// Unsigned: one placeholder slot for the fee payer.
	if len(tx.Signatures) != 1 || !tx.Signatures[0].IsZero() {
		t.Fatalf("signatures = %v, want one zero slot", tx.Signatures)
	}
	if tx.Message.AccountKeys[0] != owner {
		t.Fatalf("fee payer = %s, want %s", tx.Message.AccountKeys[0], owner)
	}

	// Account list must match what the same inputs re-derive. The profile
	// reported lastTodoId=4, so the todo address is derived for id 5.
	todoAddr, _, err := TodoAddress(testProgramID, owner, 5)
	if err != nil {
		t.Fatalf("TodoAddress error: %v", err)
	}
	profileAddr, _, err := UserProfileAddress(testProgramID, owner)
	if err != nil {
		t.Fatalf("UserProfileAddress error: %v", err)
	}

	keys := instructionAccounts(t, tx)
	want := []solana.PublicKey{todoAddr, profileAddr, owner, solana.SystemProgramID}
	if len(keys) != len(want) {
		t.Fatalf("accounts = %d, want %d", len(keys), len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("account[%d] = %s, want %s", i, keys[i], want[i])
		}
	}

	data := tx.Message.Instructions[0].Data
	if data[0] != opCreateTodo {
		t.Fatalf("opcode = %d, want %d", data[0], opCreateTodo)
	}
}

func TestPrepareCreateValidation(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	node := &fakeNode{
		blockhash: solana.NewWallet().PublicKey().String(),
		profile:   profileAccount(owner, 0, 0),
	}
	svc, done := newTestService(t, node)
	defer done()

	cases := []struct {
		name string
		req  CreateTodoRequest
	}{
		{name: "empty_description", req: CreateTodoRequest{Description: "", DueDate: 0}},
		{name: "long_description", req: CreateTodoRequest{Description: strings.Repeat("x", 281), DueDate: 0}},
		{name: "negative_due_date", req: CreateTodoRequest{Description: "ok", DueDate: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.PrepareCreate(context.Background(), owner.String(), tc.req)
			serviceErr := errors.GetServiceError(err)
			if serviceErr == nil || serviceErr.Code != errors.CodeBadRequest {
				t.Fatalf("err = %v, want BAD_REQUEST", err)
			}
		})
	}

	// Boundary: exactly 280 bytes passes validation.
	_, err := svc.PrepareCreate(context.Background(), owner.String(), CreateTodoRequest{
		Description: strings.Repeat("x", 280),
		DueDate:     0,
	})
	if err != nil {
		t.Fatalf("280-byte description rejected: %v", err)
	}
}

func TestPrepareCreateProfileMissing(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	node := &fakeNode{blockhash: solana.NewWallet().PublicKey().String()}
	svc, done := newTestService(t, node)
	defer done()

	_, err := svc.PrepareCreate(context.Background(), owner.String(), CreateTodoRequest{Description: "x", DueDate: 0})
	serviceErr := errors.GetServiceError(err)
	if serviceErr == nil || serviceErr.Code != errors.CodeNotFound {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestPrepareCreateUpstreamFailure(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	node := &fakeNode{
		blockhash:   solana.NewWallet().PublicKey().String(),
		profile:     profileAccount(owner, 0, 0),
		failMethods: map[string]bool{"getLatestBlockhash": true},
	}
	svc, done := newTestService(t, node)
	defer done()

	_, err := svc.PrepareCreate(context.Background(), owner.String(), CreateTodoRequest{Description: "x", DueDate: 0})
	serviceErr := errors.GetServiceError(err)
	if serviceErr == nil || serviceErr.Code != errors.CodeUpstream {
		t.Fatalf("err = %v, want UPSTREAM_ERROR", err)
	}
	if !strings.HasPrefix(serviceErr.Message, "solana: ") {
		t.Fatalf("message = %q, want solana: prefix", serviceErr.Message)
	}
}

func TestPrepareUpdateAccountsAndPayload(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	node := &fakeNode{blockhash: solana.NewWallet().PublicKey().String()}
	svc, done := newTestService(t, node)
	defer done()

	completed := true
	prepared, err := svc.PrepareUpdate(context.Background(), owner.String(), 9, UpdateTodoRequest{Completed: &completed})
	if err != nil {
		t.Fatalf("PrepareUpdate error: %v", err)
	}
	if prepared.TransactionType != TxUpdateTodo {
		t.Fatalf("transaction_type = %s, want %s", prepared.TransactionType, TxUpdateTodo)
	}

	tx := decodeTx(t, prepared.SerializedTransaction)
	todoAddr, _, err := TodoAddress(testProgramID, owner, 9)
	if err != nil {
		t.Fatalf("TodoAddress error: %v", err)
	}

	keys := instructionAccounts(t, tx)
	if len(keys) != 2 || keys[0] != todoAddr || keys[1] != owner {
		t.Fatalf("accounts = %v, want [%s %s]", keys, todoAddr, owner)
	}

	data := tx.Message.Instructions[0].Data
	if data[0] != opUpdateTodo || data[1] != updateHasCompleted || data[2] != 1 {
		t.Fatalf("payload = %v", data)
	}
}

func TestPrepareUpdateRejectsEmptyAndInvalid(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	node := &fakeNode{blockhash: solana.NewWallet().PublicKey().String()}
	svc, done := newTestService(t, node)
	defer done()

	_, err := svc.PrepareUpdate(context.Background(), owner.String(), 1, UpdateTodoRequest{})
	serviceErr := errors.GetServiceError(err)
	if serviceErr == nil || serviceErr.Code != errors.CodeBadRequest {
		t.Fatalf("err = %v, want BAD_REQUEST for empty update", err)
	}

	long := strings.Repeat("x", 281)
	_, err = svc.PrepareUpdate(context.Background(), owner.String(), 1, UpdateTodoRequest{Description: &long})
	serviceErr = errors.GetServiceError(err)
	if serviceErr == nil || serviceErr.Code != errors.CodeBadRequest {
		t.Fatalf("err = %v, want BAD_REQUEST for long description", err)
	}
}

func TestPrepareDeleteAccounts(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	node := &fakeNode{blockhash: solana.NewWallet().PublicKey().String()}
	svc, done := newTestService(t, node)
	defer done()

	prepared, err := svc.PrepareDelete(context.Background(), owner.String(), 3)
	if err != nil {
		t.Fatalf("PrepareDelete error: %v", err)
	}

	tx := decodeTx(t, prepared.SerializedTransaction)
	profileAddr, _, err := UserProfileAddress(testProgramID, owner)
	if err != nil {
		t.Fatalf("UserProfileAddress error: %v", err)
	}
	todoAddr, _, err := TodoAddress(testProgramID, owner, 3)
	if err != nil {
		t.Fatalf("TodoAddress error: %v", err)
	}

	keys := instructionAccounts(t, tx)
	if len(keys) != 3 || keys[0] != profileAddr || keys[1] != todoAddr || keys[2] != owner {
		t.Fatalf("accounts = %v", keys)
	}
	if data := tx.Message.Instructions[0].Data; len(data) != 1 || data[0] != opDeleteTodo {
		t.Fatalf("payload = %v", data)
	}
}

func TestPrepareInitializeSkipsProfileRead(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	// No profile configured: a profile read would fail the test through
	// the NOT_FOUND path, so success proves no read happened.
	node := &fakeNode{blockhash: solana.NewWallet().PublicKey().String()}
	svc, done := newTestService(t, node)
	defer done()

	prepared, err := svc.PrepareInitialize(context.Background(), owner.String())
	if err != nil {
		t.Fatalf("PrepareInitialize error: %v", err)
	}
	if prepared.TransactionType != TxInitializeUser {
		t.Fatalf("transaction_type = %s, want %s", prepared.TransactionType, TxInitializeUser)
	}

	tx := decodeTx(t, prepared.SerializedTransaction)
	if data := tx.Message.Instructions[0].Data; len(data) != 1 || data[0] != opInitializeUser {
		t.Fatalf("payload = %v", data)
	}
}

func TestSubmitInvalidBase64IsBadRequest(t *testing.T) {
	node := &fakeNode{blockhash: solana.NewWallet().PublicKey().String()}
	svc, done := newTestService(t, node)
	defer done()

	_, err := svc.Submit(context.Background(), SignedTransaction{SerializedTransaction: "!!not-base64!!"})
	serviceErr := errors.GetServiceError(err)
	if serviceErr == nil || serviceErr.Code != errors.CodeBadRequest {
		t.Fatalf("err = %v, want BAD_REQUEST", err)
	}
}

func TestSubmitMalformedTransactionIsBadRequest(t *testing.T) {
	node := &fakeNode{blockhash: solana.NewWallet().PublicKey().String()}
	svc, done := newTestService(t, node)
	defer done()

	garbage := base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0xfd})
	_, err := svc.Submit(context.Background(), SignedTransaction{SerializedTransaction: garbage})
	serviceErr := errors.GetServiceError(err)
	if serviceErr == nil || serviceErr.Code != errors.CodeBadRequest {
		t.Fatalf("err = %v, want BAD_REQUEST", err)
	}
}

func TestSubmitForwardsToLedger(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	node := &fakeNode{
		blockhash: solana.NewWallet().PublicKey().String(),
		signature: "5VERYrealSignature",
	}
	svc, done := newTestService(t, node)
	defer done()

	prepared, err := svc.PrepareDelete(context.Background(), owner.String(), 1)
	if err != nil {
		t.Fatalf("PrepareDelete error: %v", err)
	}

	sig, err := svc.Submit(context.Background(), SignedTransaction{
		SerializedTransaction: prepared.SerializedTransaction,
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if sig != node.signature {
		t.Fatalf("signature = %s, want %s", sig, node.signature)
	}
	if node.sentTx != prepared.SerializedTransaction {
		t.Fatal("forwarded transaction differs from the submitted one")
	}
}

func TestSubmitUpstreamFailure(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	node := &fakeNode{
		blockhash:   solana.NewWallet().PublicKey().String(),
		failMethods: map[string]bool{"sendTransaction": true},
	}
	svc, done := newTestService(t, node)
	defer done()

	prepared, err := svc.PrepareDelete(context.Background(), owner.String(), 1)
	if err != nil {
		t.Fatalf("PrepareDelete error: %v", err)
	}

	_, err = svc.Submit(context.Background(), SignedTransaction{
		SerializedTransaction: prepared.SerializedTransaction,
	})
	serviceErr := errors.GetServiceError(err)
	if serviceErr == nil || serviceErr.Code != errors.CodeUpstream {
		t.Fatalf("err = %v, want UPSTREAM_ERROR", err)
	}
}
