// Package todo builds unsigned state-transition transactions against the
// on-chain todo program and forwards signed ones to the ledger.
package todo

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/soltodo/service-layer/internal/errors"
)

// Seed labels fixed by the on-chain program. The program uses
// "user-profile" at every derivation site.
const (
	userProfileSeed = "user-profile"
	todoSeed        = "todo"
)

// Instruction opcodes of the on-chain program.
const (
	opCreateTodo     byte = 0
	opUpdateTodo     byte = 1
	opDeleteTodo     byte = 2
	opInitializeUser byte = 3
)

// Flag bits of the update instruction payload. Each optional field is
// tagged explicitly so field presence is never inferred from byte count.
const (
	updateHasCompleted   byte = 1 << 0
	updateHasDescription byte = 1 << 1
)

// MaxDescriptionLen is the program-enforced description limit in bytes.
const MaxDescriptionLen = 280

// UserProfileAddress derives the profile account address for a wallet.
func UserProfileAddress(programID, owner solana.PublicKey) (solana.PublicKey, uint8, error) {
	seeds := [][]byte{[]byte(userProfileSeed), owner.Bytes()}
	addr, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return solana.PublicKey{}, 0, errors.Internal("derive user profile address", err)
	}
	return addr, bump, nil
}

// TodoAddress derives the todo account address for a wallet and sequence id.
func TodoAddress(programID, owner solana.PublicKey, todoID uint64) (solana.PublicKey, uint8, error) {
	idBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(idBytes, todoID)

	seeds := [][]byte{[]byte(todoSeed), owner.Bytes(), idBytes}
	addr, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return solana.PublicKey{}, 0, errors.Internal("derive todo address", err)
	}
	return addr, bump, nil
}

// encodeCreateInstruction encodes: opcode 0, u32-LE description length,
// description bytes, i64-LE due date.
func encodeCreateInstruction(description string, dueDate int64) []byte {
	data := make([]byte, 0, 1+4+len(description)+8)
	data = append(data, opCreateTodo)
	data = binary.LittleEndian.AppendUint32(data, uint32(len(description)))
	data = append(data, description...)
	data = binary.LittleEndian.AppendUint64(data, uint64(dueDate))
	return data
}

// encodeUpdateInstruction encodes: opcode 1, flags byte, then the tagged
// optional fields in flag order.
func encodeUpdateInstruction(description *string, completed *bool) []byte {
	var flags byte
	if completed != nil {
		flags |= updateHasCompleted
	}
	if description != nil {
		flags |= updateHasDescription
	}

	data := []byte{opUpdateTodo, flags}
	if completed != nil {
		var b byte
		if *completed {
			b = 1
		}
		data = append(data, b)
	}
	if description != nil {
		data = binary.LittleEndian.AppendUint32(data, uint32(len(*description)))
		data = append(data, *description...)
	}
	return data
}

// encodeDeleteInstruction encodes the bare delete opcode.
func encodeDeleteInstruction() []byte {
	return []byte{opDeleteTodo}
}

// encodeInitializeInstruction encodes the bare initialize-user opcode.
func encodeInitializeInstruction() []byte {
	return []byte{opInitializeUser}
}

// UserProfile mirrors the on-chain profile account layout:
// authority (32) | todo_count (u64 LE) | last_todo_id (u64 LE).
type UserProfile struct {
	Authority  solana.PublicKey
	TodoCount  uint64
	LastTodoID uint64
}

const userProfileLen = 32 + 8 + 8

func decodeUserProfile(data []byte) (*UserProfile, error) {
	if len(data) < userProfileLen {
		return nil, fmt.Errorf("user profile account too short: %d bytes", len(data))
	}
	return &UserProfile{
		Authority:  solana.PublicKeyFromBytes(data[:32]),
		TodoCount:  binary.LittleEndian.Uint64(data[32:40]),
		LastTodoID: binary.LittleEndian.Uint64(data[40:48]),
	}, nil
}
