// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package apikey

import (
	"database/sql"

	"github.com/DataDog/kukur/pkg/util/log"
)

// A migration is one idempotent schema change, identified by name.
type migration struct {
	name  string
	apply func(*sql.Tx) error
}

// migrations run in order at startup. Append only; never reorder or remove.
var migrations = []migration{
	{
		name: "create_api_key",
		apply: func(tx *sql.Tx) error {
			_, err := tx.Exec(`create table ApiKey (
				id integer primary key autoincrement,
				name text not null unique,
				api_key blob not null,
				salt blob not null,
				creation_date datetime not null
			)`)
			return err
		},
	},
}

// migrate applies all pending migrations. Applied migrations are recorded in
// the Migration table; running migrate twice is a no-op.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`create table if not exists Migration (
		name text primary key,
		applied_at datetime not null
	)`); err != nil {
		return err
	}

	applied := map[string]bool{}
	rows, err := db.Query(`select name from Migration`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		applied[name] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.name] {
			continue
		}
		log.Infof("Applying api key store migration %q", m.name)
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if err := m.apply(tx); err != nil {
			tx.Rollback() //nolint:errcheck
			return err
		}
		if _, err := tx.Exec(`insert into Migration (name, applied_at) values (?, datetime('now'))`, m.name); err != nil {
			tx.Rollback() //nolint:errcheck
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}
