// file: scripts/query_records.go
// version: 1.2.0
// guid: 8a9b0c1d-2e3f-4a5b-6c7d-8e9f0a1b2c3d

package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/cockroachdb/pebble/v2"
)

// Dumps every record in a medication database, plus the code index
// entries, for eyeballing during development. Usage:
//
//	go run scripts/query_records.go [path/to/medications.pebble]
func main() {
	path := "medications.pebble"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	db, err := pebble.Open(path, &pebble.Options{ReadOnly: true})
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	iter, err := db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("record:"),
		UpperBound: []byte("record;"),
	})
	if err != nil {
		log.Fatal(err)
	}
	defer iter.Close()

	records := 0
	indexEntries := 0
	for iter.First(); iter.Valid(); iter.Next() {
		key := string(iter.Key())
		if len(key) > len("record:code:") && key[:len("record:code:")] == "record:code:" {
			indexEntries++
			fmt.Printf("%s -> %s\n", key, iter.Value())
			continue
		}

		records++
		var rec struct {
			Name     string `json:"name"`
			Metadata *struct {
				ExternalCode string `json:"external_code"`
			} `json:"metadata"`
		}
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			fmt.Printf("%s: (unreadable: %v)\n", key, err)
			continue
		}
		code := "-"
		if rec.Metadata != nil && rec.Metadata.ExternalCode != "" {
			code = rec.Metadata.ExternalCode
		}
		fmt.Printf("%s: name=%q code=%s\n", key, rec.Name, code)
	}

	fmt.Printf("\n%d records, %d code index entries\n", records, indexEntries)
}
