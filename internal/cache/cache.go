// Package cache is a content-addressed compile cache: a BLAKE2b digest of
// the source text, exactly as read, keys a CBOR-encoded entry recording the
// previously emitted Python text, so a rerun on unchanged source skips
// straight from source to output.
package cache

import (
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"

	"github.com/portugol-lang/portugol/internal/cerr"
)

// Entry is one cache record: the compile verdict for a piece of source text
// at the time it was last compiled.
type Entry struct {
	SourceDigest string    `cbor:"source_digest"`
	TokenCount   int       `cbor:"token_count"`
	Emitted      string    `cbor:"emitted"`
	CompiledAt   time.Time `cbor:"compiled_at"`
}

// Cache is a directory of CBOR-encoded entries keyed by digest.
type Cache struct {
	dir  string
	salt []byte
}

// Open ensures dir exists and returns a Cache rooted there. salt
// diversifies the derived on-disk key across distinct compiler versions
// sharing a cache directory, via HKDF.
func Open(dir string, salt []byte) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, cerr.Wrap(cerr.TypeCache, "creating cache dir", err)
	}
	return &Cache{dir: dir, salt: salt}, nil
}

// Digest computes the BLAKE2b-256 content digest of the source text as
// given; no normalization is applied first.
func Digest(source string) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", cerr.Wrap(cerr.TypeCache, "initializing blake2b", err)
	}
	if _, err := io.WriteString(h, source); err != nil {
		return "", cerr.Wrap(cerr.TypeCache, "hashing source", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// key derives the on-disk filename for a digest via HKDF-SHA3, so the cache
// directory layout never directly exposes raw content digests.
func (c *Cache) key(digest string) (string, error) {
	r := hkdf.New(sha3.New256, []byte(digest), c.salt, []byte("portugolc-cache-entry"))
	out := make([]byte, 16)
	if _, err := io.ReadFull(r, out); err != nil {
		return "", cerr.Wrap(cerr.TypeCache, "deriving cache key", err)
	}
	return hex.EncodeToString(out) + ".cbor", nil
}

// Get looks up a previously stored entry for digest.
func (c *Cache) Get(digest string) (*Entry, bool, error) {
	name, err := c.key(digest)
	if err != nil {
		return nil, false, err
	}
	raw, err := os.ReadFile(filepath.Join(c.dir, name))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, cerr.Wrap(cerr.TypeCache, "reading cache entry", err)
	}
	var e Entry
	if err := cbor.Unmarshal(raw, &e); err != nil {
		return nil, false, cerr.Wrap(cerr.TypeCache, "decoding cache entry", err)
	}
	if e.SourceDigest != digest {
		return nil, false, nil
	}
	return &e, true, nil
}

// Put stores an entry for digest, overwriting any prior entry.
func (c *Cache) Put(digest string, e *Entry) error {
	name, err := c.key(digest)
	if err != nil {
		return err
	}
	e.SourceDigest = digest
	opts := cbor.CanonicalEncOptions()
	mode, err := opts.EncMode()
	if err != nil {
		return cerr.Wrap(cerr.TypeCache, "building cbor encoder", err)
	}
	raw, err := mode.Marshal(e)
	if err != nil {
		return cerr.Wrap(cerr.TypeCache, "encoding cache entry", err)
	}
	if err := os.WriteFile(filepath.Join(c.dir, name), raw, 0o644); err != nil {
		return cerr.Wrap(cerr.TypeCache, "writing cache entry", err)
	}
	return nil
}
