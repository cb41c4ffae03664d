package main

import (
	"bytes"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	bolt "go.etcd.io/bbolt"

	"github.com/reasonchain/core/pkg/codec"
)

var (
	dataDir    = flag.String("data-dir", "./data", "reasonchain-core data directory")
	dryRun     = flag.Bool("dry-run", false, "Show what would be migrated without making changes")
	backupPath = flag.String("backup", "", "Path to back up the database before migration (default: <data-dir>/sessions.db.backup)")
)

var bucketBlobs = []byte("blobs")

func main() {
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("reasonchain-core Database Migration Tool - schema upgrade to", codec.CurrentVersion)
	log.Println("=================================================================")

	dbPath := filepath.Join(*dataDir, "sessions.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		log.Fatalf("Database not found at %s", dbPath)
	}

	log.Printf("Database: %s", dbPath)
	log.Printf("Dry run: %v", *dryRun)

	if !*dryRun {
		backupFile := *backupPath
		if backupFile == "" {
			backupFile = dbPath + ".backup"
		}
		log.Printf("Creating backup: %s", backupFile)
		if err := copyFile(dbPath, backupFile); err != nil {
			log.Fatalf("Failed to create backup: %v", err)
		}
		log.Println("Backup created successfully")
	}

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	c := codec.New(codec.DefaultMigrations()...)
	if err := migrateEnvelopes(db, c, *dryRun); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	if *dryRun {
		log.Println("\nDry run completed. No changes made.")
		log.Println("Run without --dry-run to perform the migration.")
	} else {
		log.Println("\nMigration completed successfully!")
	}
}

// migrateEnvelopes walks every key under active/, decodes its envelope
// (which itself chains DefaultMigrations forward to codec.CurrentVersion),
// and, when the stored version lagged, re-encodes and writes it back at
// the current schema. Keys already at CurrentVersion are left untouched.
func migrateEnvelopes(db *bolt.DB, c *codec.Codec, dryRun bool) error {
	var total, stale, migrated int

	keys := make(map[string][]byte)
	err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketBlobs)
		if b == nil {
			log.Println("No 'blobs' bucket found - nothing to migrate")
			return nil
		}
		cur := b.Cursor()
		prefix := []byte("active/")
		for k, v := cur.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = cur.Next() {
			if !strings.HasSuffix(string(k), "reasoning-state.json") {
				continue
			}
			total++
			cp := make([]byte, len(v))
			copy(cp, v)
			keys[string(k)] = cp
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("Found %d session state records", total)

	for key, data := range keys {
		if !envelopeNeedsMigration(data) {
			continue
		}
		stale++

		state, err := c.Decode(data)
		if err != nil {
			log.Printf("Warning: skipping unreadable record %s: %v", key, err)
			continue
		}

		if dryRun {
			log.Printf("[DRY RUN] Would migrate %s to schema %s", key, codec.CurrentVersion)
			continue
		}

		newData, err := c.Encode(state)
		if err != nil {
			log.Printf("Warning: failed to re-encode %s: %v", key, err)
			continue
		}

		if err := db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketBlobs).Put([]byte(key), newData)
		}); err != nil {
			return err
		}
		migrated++
		log.Printf("Migrated %s", key)
	}

	log.Printf("%d/%d records were on a stale schema", stale, total)
	if !dryRun {
		log.Printf("Migrated %d records to schema %s", migrated, codec.CurrentVersion)
	}
	return nil
}

// envelopeNeedsMigration reports whether the stored envelope's _version
// field differs from CurrentVersion, without fully decoding the payload.
func envelopeNeedsMigration(data []byte) bool {
	return !bytes.Contains(data, []byte(`"_version":"`+codec.CurrentVersion+`"`))
}

func copyFile(src, dst string) error {
	input, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, input, 0600)
}
