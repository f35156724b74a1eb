package main

import (
	"encoding/binary"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/presshq/press/presswww/database/localdb"
	"github.com/presshq/press/presswww/sharedconfig"
)

var (
	defaultDbDir = filepath.Join(sharedconfig.DefaultDataDir,
		localdb.BlogDBPath)
	dbDirectory = flag.String("d", defaultDbDir,
		"presswww blog database directory")
)

func _main() error {
	flag.Parse()

	fmt.Printf("Database: %v\n", *dbDirectory)

	db, err := leveldb.OpenFile(*dbDirectory, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	i := db.NewIterator(nil, nil)
	for i.Next() {
		fmt.Printf("%v\n", strings.Repeat("=", 80))
		key := string(i.Key())
		value := i.Value()
		var v interface{}
		switch {
		case key == localdb.VersionKey:
			v, err = localdb.DecodeVersion(value)
		case key == localdb.LastPostIDKey,
			key == localdb.LastCommentIDKey,
			key == localdb.LastCategoryIDKey,
			key == localdb.LastTagIDKey:
			v = binary.LittleEndian.Uint64(value)
		case strings.HasPrefix(key, localdb.UserPrefix):
			v, err = localdb.DecodeUserRecord(value)
		case strings.HasPrefix(key, localdb.PostPrefix):
			v, err = localdb.DecodePostRecord(value)
		case strings.HasPrefix(key, localdb.CommentPrefix):
			v, err = localdb.DecodeCommentRecord(value)
		case strings.HasPrefix(key, localdb.CategoryPrefix):
			v, err = localdb.DecodeCategoryRecord(value)
		case strings.HasPrefix(key, localdb.TagPrefix):
			v, err = localdb.DecodeTagRecord(value)
		default:
			v = hex.EncodeToString(value)
		}
		if err != nil {
			return fmt.Errorf("decode record %v: %v", key, err)
		}
		fmt.Printf("key     : %v\n", key)
		fmt.Printf("Record  : %v", spew.Sdump(v))
	}
	i.Release()
	return i.Error()
}

func main() {
	err := _main()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
