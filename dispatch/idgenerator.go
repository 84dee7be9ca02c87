package dispatch

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

var idGeneratorMutex sync.Mutex
var idGeneratorInstantiated bool
var idGenerator IDGenerator

// IDGenerator can generate IDs for scheduled events.
type IDGenerator interface {
	// Generate an ID.
	Generate() string
}

// UseSequentialIDGenerator configures the ID generator to generate IDs
// sequentially. Sequential IDs are deterministic across runs.
func UseSequentialIDGenerator() {
	setIDGenerator(&sequentialIDGenerator{})
}

// UseParallelIDGenerator configures the ID generator to generate IDs that are
// unique across processes. The IDs are not deterministic anymore.
func UseParallelIDGenerator() {
	setIDGenerator(parallelIDGenerator{})
}

func setIDGenerator(g IDGenerator) {
	idGeneratorMutex.Lock()
	defer idGeneratorMutex.Unlock()

	if idGeneratorInstantiated {
		log.Panic("cannot change id generator type after using it")
	}

	idGenerator = g
	idGeneratorInstantiated = true
}

// GetIDGenerator returns the ID generator in use, defaulting to the
// sequential one.
func GetIDGenerator() IDGenerator {
	idGeneratorMutex.Lock()
	defer idGeneratorMutex.Unlock()

	if !idGeneratorInstantiated {
		idGenerator = &sequentialIDGenerator{}
		idGeneratorInstantiated = true
	}

	return idGenerator
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)
	return strconv.FormatUint(idNumber, 10)
}

type parallelIDGenerator struct{}

func (g parallelIDGenerator) Generate() string {
	return xid.New().String()
}
