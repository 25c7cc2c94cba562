package todo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/soltodo/service-layer/internal/chain"
	"github.com/soltodo/service-layer/internal/errors"
	"github.com/soltodo/service-layer/internal/logging"
)

// Service prepares unsigned todo transactions and submits signed ones.
type Service struct {
	chain     *chain.Client
	programID solana.PublicKey
	logger    *logging.Logger
}

// NewService creates a todo service against the given program.
func NewService(chainClient *chain.Client, programID string, logger *logging.Logger) (*Service, error) {
	pid, err := solana.PublicKeyFromBase58(programID)
	if err != nil {
		return nil, fmt.Errorf("invalid program ID: %w", err)
	}
	return &Service{
		chain:     chainClient,
		programID: pid,
		logger:    logger,
	}, nil
}

// ProgramID returns the on-chain program identity.
func (s *Service) ProgramID() solana.PublicKey {
	return s.programID
}

func parseOwner(publicKey string) (solana.PublicKey, error) {
	owner, err := solana.PublicKeyFromBase58(publicKey)
	if err != nil {
		return solana.PublicKey{}, errors.InvalidArgument(fmt.Sprintf("invalid public key: %v", err))
	}
	return owner, nil
}

func validateDescription(description string) error {
	if len(description) == 0 {
		return errors.BadRequest("description cannot be empty")
	}
	if len(description) > MaxDescriptionLen {
		return errors.BadRequest("description must be 280 bytes or less")
	}
	return nil
}

// nextTodoID reads the owner's profile account to learn the sequence
// number the program will assign to the next todo.
func (s *Service) nextTodoID(ctx context.Context, profileAddr solana.PublicKey) (uint64, error) {
	data, err := s.chain.GetAccountInfo(ctx, profileAddr)
	if err == chain.ErrAccountNotFound {
		return 0, errors.NotFound("user profile not initialized")
	}
	if err != nil {
		return 0, errors.Upstream(err.Error(), err)
	}

	profile, err := decodeUserProfile(data)
	if err != nil {
		return 0, errors.Internal("decode user profile account", err)
	}
	return profile.LastTodoID + 1, nil
}

// buildTransaction assembles an unsigned single-instruction transaction
// with the owner as fee payer and serializes it to base64.
func (s *Service) buildTransaction(ctx context.Context, owner solana.PublicKey, accounts solana.AccountMetaSlice, data []byte) (string, error) {
	blockhash, err := s.chain.GetLatestBlockhash(ctx)
	if err != nil {
		return "", errors.Upstream(err.Error(), err)
	}

	instruction := solana.NewInstruction(s.programID, accounts, data)

	tx, err := solana.NewTransaction(
		[]solana.Instruction{instruction},
		blockhash,
		solana.TransactionPayer(owner),
	)
	if err != nil {
		return "", errors.Internal("build transaction", err)
	}

	// Placeholder signature slots so the wire form matches what wallet
	// adapters expect from an unsigned transaction.
	tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)

	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", errors.Internal("serialize transaction", err)
	}

	return base64.StdEncoding.EncodeToString(raw), nil
}

func metadataJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// PrepareCreate builds an unsigned create-todo transaction for the next
// sequence number of the owner's profile.
func (s *Service) PrepareCreate(ctx context.Context, publicKey string, req CreateTodoRequest) (*PreparedTransaction, error) {
	owner, err := parseOwner(publicKey)
	if err != nil {
		return nil, err
	}
	if err := validateDescription(req.Description); err != nil {
		return nil, err
	}
	if req.DueDate < 0 {
		return nil, errors.BadRequest("due date must be a valid timestamp")
	}

	profileAddr, _, err := UserProfileAddress(s.programID, owner)
	if err != nil {
		return nil, err
	}

	todoID, err := s.nextTodoID(ctx, profileAddr)
	if err != nil {
		return nil, err
	}

	todoAddr, _, err := TodoAddress(s.programID, owner, todoID)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(todoAddr, true, false),
		solana.NewAccountMeta(profileAddr, true, false),
		solana.NewAccountMeta(owner, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}

	serialized, err := s.buildTransaction(ctx, owner, accounts, encodeCreateInstruction(req.Description, req.DueDate))
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithField("todo_id", todoID).Debug("prepared create transaction")

	return &PreparedTransaction{
		SerializedTransaction: serialized,
		TransactionType:       TxCreateTodo,
		Metadata:              metadataJSON(req),
	}, nil
}

// PrepareUpdate builds an unsigned update transaction for an existing todo.
func (s *Service) PrepareUpdate(ctx context.Context, publicKey string, todoID uint64, req UpdateTodoRequest) (*PreparedTransaction, error) {
	owner, err := parseOwner(publicKey)
	if err != nil {
		return nil, err
	}
	if req.Description == nil && req.Completed == nil {
		return nil, errors.BadRequest("nothing to update")
	}
	if req.Description != nil {
		if err := validateDescription(*req.Description); err != nil {
			return nil, err
		}
	}

	todoAddr, _, err := TodoAddress(s.programID, owner, todoID)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(todoAddr, true, false),
		solana.NewAccountMeta(owner, true, true),
	}

	serialized, err := s.buildTransaction(ctx, owner, accounts, encodeUpdateInstruction(req.Description, req.Completed))
	if err != nil {
		return nil, err
	}

	return &PreparedTransaction{
		SerializedTransaction: serialized,
		TransactionType:       TxUpdateTodo,
		Metadata:              metadataJSON(req),
	}, nil
}

// PrepareDelete builds an unsigned delete transaction for an existing todo.
func (s *Service) PrepareDelete(ctx context.Context, publicKey string, todoID uint64) (*PreparedTransaction, error) {
	owner, err := parseOwner(publicKey)
	if err != nil {
		return nil, err
	}

	profileAddr, _, err := UserProfileAddress(s.programID, owner)
	if err != nil {
		return nil, err
	}
	todoAddr, _, err := TodoAddress(s.programID, owner, todoID)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(profileAddr, true, false),
		solana.NewAccountMeta(todoAddr, true, false),
		solana.NewAccountMeta(owner, true, true),
	}

	serialized, err := s.buildTransaction(ctx, owner, accounts, encodeDeleteInstruction())
	if err != nil {
		return nil, err
	}

	return &PreparedTransaction{
		SerializedTransaction: serialized,
		TransactionType:       TxDeleteTodo,
		Metadata:              metadataJSON(DeleteTodoRequest{TodoID: todoID}),
	}, nil
}

// PrepareInitialize builds an unsigned initialize-user transaction that
// creates the owner's profile account. Precondition for the first create.
func (s *Service) PrepareInitialize(ctx context.Context, publicKey string) (*PreparedTransaction, error) {
	owner, err := parseOwner(publicKey)
	if err != nil {
		return nil, err
	}

	profileAddr, _, err := UserProfileAddress(s.programID, owner)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(profileAddr, true, false),
		solana.NewAccountMeta(owner, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}

	serialized, err := s.buildTransaction(ctx, owner, accounts, encodeInitializeInstruction())
	if err != nil {
		return nil, err
	}

	return &PreparedTransaction{
		SerializedTransaction: serialized,
		TransactionType:       TxInitializeUser,
	}, nil
}

// Submit decodes a signed transaction and forwards it to the ledger,
// returning the confirmation signature. Semantic validation is left to
// the on-chain program.
func (s *Service) Submit(ctx context.Context, signed SignedTransaction) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(signed.SerializedTransaction)
	if err != nil {
		return "", errors.BadRequest("serialized transaction is not valid base64")
	}

	if _, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw)); err != nil {
		return "", errors.BadRequest("serialized transaction is malformed")
	}

	signature, err := s.chain.SendTransaction(ctx, signed.SerializedTransaction)
	if err != nil {
		return "", errors.Upstream(err.Error(), err)
	}

	s.logger.WithContext(ctx).WithField("signature", signature).Info("transaction submitted")
	return signature, nil
}
