package uid

import (
	"errors"
	"hash/fnv"
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
)

// Snowflake generates time-ordered int64 IDs.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake builds a generator whose node number comes from SNOWFLAKE_NODE
// or, when unset, from a hash of the hostname.
func NewSnowflake() (*Snowflake, error) {
	nodeID, err := snowflakeNodeID()
	if err != nil {
		return nil, err
	}

	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: node}, nil
}

// Generate returns a new snowflake ID.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}

func snowflakeNodeID() (int64, error) {
	maxNode := int64(-1 ^ (-1 << snowflake.NodeBits))

	if v := os.Getenv("SNOWFLAKE_NODE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, err
		}
		if n < 0 || n > maxNode {
			return 0, errors.New("uid: SNOWFLAKE_NODE out of range")
		}
		return n, nil
	}

	host, err := os.Hostname()
	if err != nil || host == "" {
		return 0, ErrStableNodeIdentityUnavailable
	}

	h := fnv.New32a()
	//nolint:errcheck // hash writes never fail
	h.Write([]byte(host))

	return int64(h.Sum32()) % (maxNode + 1), nil
}
