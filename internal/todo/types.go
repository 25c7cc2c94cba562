package todo

// Transaction type tags returned in PreparedTransaction.
const (
	TxCreateTodo     = "create_todo"
	TxUpdateTodo     = "update_todo"
	TxDeleteTodo     = "delete_todo"
	TxInitializeUser = "initialize_user"
)

// CreateTodoRequest is the payload for preparing a create transaction.
type CreateTodoRequest struct {
	Description string `json:"description"`
	DueDate     int64  `json:"due_date"`
}

// UpdateTodoRequest is the payload for preparing an update transaction.
// Both fields are optional; at least one must be present.
type UpdateTodoRequest struct {
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// DeleteTodoRequest is the payload for preparing a delete transaction.
type DeleteTodoRequest struct {
	TodoID uint64 `json:"todo_id"`
}

// PreparedTransaction is an unsigned, serialized transaction for the
// client to countersign. Never persisted.
type PreparedTransaction struct {
	SerializedTransaction string `json:"serialized_transaction"`
	TransactionType       string `json:"transaction_type"`
	Metadata              string `json:"metadata,omitempty"`
}

// SignedTransaction is a client-countersigned transaction to submit.
type SignedTransaction struct {
	Signature             string `json:"signature"`
	SerializedTransaction string `json:"serialized_transaction"`
}
