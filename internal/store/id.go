package store

import (
	"crypto/rand"
	"fmt"
)

const (
	base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	idHashLength   = 4
	idMaxAttempts  = 20

	taskIDPrefix       = "td"
	attachmentIDPrefix = "at"
)

// GenerateID returns a new id with the given prefix. It retries on
// collisions using the provided exists function.
func GenerateID(prefix string, exists func(string) (bool, error)) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("id prefix is required")
	}

	for i := 0; i < idMaxAttempts; i++ {
		hash, err := randomBase36(idHashLength)
		if err != nil {
			return "", err
		}
		id := fmt.Sprintf("%s-%s", prefix, hash)
		if exists == nil {
			return id, nil
		}
		ok, err := exists(id)
		if err != nil {
			return "", err
		}
		if !ok {
			return id, nil
		}
	}

	return "", fmt.Errorf("unable to generate unique id")
}

// GenerateTaskID returns a new task id using the td- prefix.
func GenerateTaskID(exists func(string) (bool, error)) (string, error) {
	return GenerateID(taskIDPrefix, exists)
}

// GenerateAttachmentID returns a new attachment id using the at-
// prefix. Uniqueness only needs to hold within one task's list.
func GenerateAttachmentID(exists func(string) (bool, error)) (string, error) {
	return GenerateID(attachmentIDPrefix, exists)
}

func randomBase36(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	out := make([]byte, length)
	for i := 0; i < length; i++ {
		out[i] = base36Alphabet[int(b[i])%len(base36Alphabet)]
	}
	return string(out), nil
}
