// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package apikey persists hashed API keys in an embedded sqlite database.
// The plaintext key is returned exactly once, at creation; only a scrypt
// digest and the salt are stored.
package apikey

import (
	"crypto/rand"
	"crypto/subtle"
	"database/sql"
	"encoding/base64"
	"time"

	"golang.org/x/crypto/scrypt"
	_ "modernc.org/sqlite"

	"github.com/DataDog/kukur/pkg/errors"
)

// scrypt parameters; changing them invalidates stored digests.
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	digestLength = 32

	keyLength  = 48
	saltLength = 16
)

// Key describes one stored API key. The key material itself is not
// recoverable.
type Key struct {
	Name         string    `json:"name"`
	CreationDate time.Time `json:"creationDate"`
}

// Store is an API key repository backed by one sqlite file.
//
// Writes serialize through sqlite transactions; reads may run concurrently.
type Store struct {
	db *sql.DB
}

// Open opens the repository at path, creating it and applying pending schema
// migrations when needed.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// modernc sqlite serializes writes per connection
	db.SetMaxOpenConns(1)
	if err := migrate(db); err != nil {
		db.Close() //nolint:errcheck
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create generates a new API key and returns it. This is the only time the
// plaintext key is available.
func (s *Store) Create(name string) (string, error) {
	if name == "" {
		return "", errors.New(errors.InvalidConfiguration, "api key name cannot be empty")
	}
	rawKey := make([]byte, keyLength)
	if _, err := rand.Read(rawKey); err != nil {
		return "", err
	}
	key := base64.RawURLEncoding.EncodeToString(rawKey)

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	digest, err := hashKey(key, salt)
	if err != nil {
		return "", err
	}

	_, err = s.db.Exec(
		`insert into ApiKey (name, api_key, salt, creation_date) values (?, ?, ?, ?)`,
		name, digest, salt, time.Now().UTC(),
	)
	if err != nil {
		return "", errors.Newf(errors.InvalidConfiguration, "cannot store api key %q: %v", name, err)
	}
	return key, nil
}

// List returns the name and creation date of every stored key.
func (s *Store) List() ([]Key, error) {
	rows, err := s.db.Query(`select name, creation_date from ApiKey order by id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []Key
	for rows.Next() {
		var key Key
		if err := rows.Scan(&key.Name, &key.CreationDate); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Has reports whether a key with the given name exists.
func (s *Store) Has(name string) (bool, error) {
	var count int
	if err := s.db.QueryRow(`select count(*) from ApiKey where name = ?`, name).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// Validate hashes the presented key with the stored salt and compares the
// digests in constant time. Unknown names validate to false.
func (s *Store) Validate(name string, presentedKey string) (bool, error) {
	var digest, salt []byte
	err := s.db.QueryRow(`select api_key, salt from ApiKey where name = ?`, name).Scan(&digest, &salt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	presentedDigest, err := hashKey(presentedKey, salt)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(digest, presentedDigest) == 1, nil
}

// Revoke deletes a key by name.
func (s *Store) Revoke(name string) error {
	_, err := s.db.Exec(`delete from ApiKey where name = ?`, name)
	return err
}

func hashKey(key string, salt []byte) ([]byte, error) {
	return scrypt.Key([]byte(key), salt, scryptN, scryptR, scryptP, digestLength)
}
