package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Key prefixes for different data types
const (
	documentPrefix        = "docrec"
	versionPrefix         = "docver"
	versionByDocPrefix    = "docverd"
	validationPrefix      = "valres"
	validationByVerPrefix = "valresv"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("%s:%s", documentPrefix, id))
}

// makeVersionKey generates a key for a document version by ID.
func makeVersionKey(id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("%s:%s", versionPrefix, id))
}

// makeVersionByDocKey generates a composite key for the per-document version
// index. Format: prefix:documentID:versionNumber
func makeVersionByDocKey(documentID uuid.UUID, versionNumber int) []byte {
	prefix := versionByDocPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 + 8 // 16 bytes for UUID + 8 bytes for version number
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	offset += copy(buf[offset:], documentID[:])
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(versionNumber))
	return buf
}

// makePartialVersionByDocKey generates a partial key for scanning a
// document's versions in version-number order.
func makePartialVersionByDocKey(documentID uuid.UUID) []byte {
	prefix := versionByDocPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	copy(buf[offset:], documentID[:])
	return buf
}

// makeValidationKey generates a key for a validation result by ID.
func makeValidationKey(id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("%s:%s", validationPrefix, id))
}

// makeValidationByVerKey generates a composite key for the per-version
// validation result index. Format: prefix:versionID:createdAt:resultID
func makeValidationByVerKey(versionID uuid.UUID, createdAt time.Time, resultID uuid.UUID) []byte {
	prefix := validationByVerPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 + 8 + 16
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	offset += copy(buf[offset:], versionID[:])
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro()))
	offset += 8
	copy(buf[offset:], resultID[:])
	return buf
}

// makePartialValidationByVerKey generates a partial key for scanning a
// version's validation results in creation order.
func makePartialValidationByVerKey(versionID uuid.UUID) []byte {
	prefix := validationByVerPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	copy(buf[offset:], versionID[:])
	return buf
}
