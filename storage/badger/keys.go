package badger

import "fmt"

// Key prefixes for different data types
const (
	profilePrefix    = "prof:"
	checkpointSuffix = "chkpt"
)

// makeProfileKey generates a key for a profile by user ID.
// Keys sort by user ID, which ForEachProfile relies on for resumable scans.
func makeProfileKey(userID string) []byte {
	buf := make([]byte, 0, len(profilePrefix)+len(userID))
	buf = append(buf, profilePrefix...)
	return append(buf, userID...)
}

// userIDFromKey strips the profile prefix from a primary key.
func userIDFromKey(key []byte) string {
	return string(key[len(profilePrefix):])
}

// makeCheckpointKey generates a key for processor checkpoints.
func makeCheckpointKey(processorType string) []byte {
	return []byte(fmt.Sprintf("%s:%s", processorType, checkpointSuffix))
}
