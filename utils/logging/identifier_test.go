package logging

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func TestAddresses(t *testing.T) {
	addrs := []common.Address{
		common.HexToAddress("0xAbCdEf0000000000000000000000000000000001"),
		common.HexToAddress("0x00000000000000000000000000000000000000FF"),
	}
	assert.Equal(t, []string{
		"0xabcdef0000000000000000000000000000000001",
		"0x00000000000000000000000000000000000000ff",
	}, Addresses(addrs))
}
