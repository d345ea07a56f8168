package verihash

import (
	"hash"

	sha256simd "github.com/minio/sha256-simd"
	"golang.org/x/crypto/blake2b"
)

// Algorithm names recognized by the default Registry.
const (
	SHA256     = "sha256"
	Blake2b256 = "blake2b-256"
)

// Constructor builds a fresh hash.Hash instance producing a Size-byte sum.
// Implementations must return a hash whose Sum has length Size. Register
// does not check this: a digest copies at most Size bytes of the sum, and
// a shorter sum leaves the remaining bytes zero.
type Constructor func() hash.Hash

// Registry maps an algorithm name to a Constructor. The spec leaves the
// hash function pluggable ("any collision-resistant hash with a
// byte-update API"); Registry is how veriform exposes that without
// forcing every caller to thread a hash.Hash constructor through by hand.
type Registry struct {
	constructors map[string]Constructor
}

// NewRegistry returns a Registry seeded with veriform's two built-in
// algorithms: sha256 (the spec's reference algorithm, backed here by
// github.com/minio/sha256-simd's assembly-accelerated implementation) and
// blake2b-256 (golang.org/x/crypto/blake2b), demonstrating that Verihash
// is not wedded to any one hash function.
func NewRegistry() *Registry {
	r := &Registry{constructors: make(map[string]Constructor, 2)}
	r.Register(SHA256, func() hash.Hash { return sha256simd.New() })
	r.Register(Blake2b256, func() hash.Hash {
		h, err := blake2b.New256(nil)
		if err != nil {
			// blake2b.New256 only errors for a bad key/size, and we
			// always pass a nil key of the correct size.
			panic(err)
		}
		return h
	})
	return r
}

// Register adds or replaces the Constructor for name.
func (r *Registry) Register(name string, ctor Constructor) {
	r.constructors[name] = ctor
}

// New constructs a Hasher-ready hash.Hash for the named algorithm. It
// returns false if name is not registered.
func (r *Registry) New(name string) (hash.Hash, bool) {
	ctor, ok := r.constructors[name]
	if !ok {
		return nil, false
	}
	return ctor(), true
}

// Default is the package-level registry used when callers don't supply
// their own, seeded by NewRegistry.
var Default = NewRegistry()
