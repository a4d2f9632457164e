package operation

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/agentjobs/validation-gateway/model/validation"
)

const (
	// codes for commit-reveal records
	codeCommitRecord = 10

	// codes for the job index
	codeJobValidators = 20
)

func makePrefix(code byte, keys ...interface{}) []byte {
	prefix := make([]byte, 1)
	prefix[0] = code
	for _, key := range keys {
		prefix = append(prefix, b(key)...)
	}
	return prefix
}

func b(v interface{}) []byte {
	switch i := v.(type) {
	case uint8:
		return []byte{i}
	case uint32:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, i)
		return b
	case uint64:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, i)
		return b
	case validation.JobID:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, uint64(i))
		return b
	case common.Address:
		return i.Bytes()
	case common.Hash:
		return i.Bytes()
	default:
		panic(fmt.Sprintf("unsupported type to convert (%T)", v))
	}
}
