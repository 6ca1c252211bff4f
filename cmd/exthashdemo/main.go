package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fulldump/goconfig"
	"github.com/gostonefire/exthashmap"
	"github.com/gostonefire/exthashmap/codec"
	"github.com/gostonefire/exthashmap/hashfunc"
)

type Config struct {
	Dir              string `usage:"directory where the hash map files are created"`
	Keys             int    `usage:"number of records to insert in each hash map"`
	RecordsPerBucket int    `usage:"number of records per bucket"`
	Bloom            bool   `usage:"guard searches with a bloom filter"`
	Keep             bool   `usage:"keep the hash map files when done"`
	Verbose          bool   `usage:"log splits and directory doublings"`
}

func main() {

	c := Config{
		Dir:              os.TempDir(),
		Keys:             10_000,
		RecordsPerBucket: 21,
	}
	goconfig.Read(&c)

	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		log.Fatalf("Could not create %s: %s", c.Dir, err)
	}

	if err := integerKeys(c, logger); err != nil {
		log.Fatalf("Integer keys: %s", err)
	}

	if err := stringKeys(c, logger); err != nil {
		log.Fatalf("String keys: %s", err)
	}
}

// integerKeys - Builds an int32 to string hash map with the identity hash, deletes every even key and reopens it
func integerKeys(c Config, logger *slog.Logger) (err error) {
	name := filepath.Join(c.Dir, "demo-int")
	hmConf := exthashmap.Conf[int32]{
		RecordsPerBucket: c.RecordsPerBucket,
		HashFunc:         hashfunc.Identity[int32],
		Logger:           logger,
	}
	if c.Bloom {
		hmConf.BloomFilterKeys = uint(c.Keys)
	}

	ehm, info, err := exthashmap.NewExtHashMap(name, codec.Int32{}, codec.String(24), hmConf)
	if err != nil {
		return
	}
	log.Printf("Opened %s: %d buckets, global depth %d", name, info.NumberOfBuckets, info.GlobalDepth)

	for i := 0; i < c.Keys; i++ {
		err = ehm.Insert(int32(i), fmt.Sprintf("value-%d", i))
		if err != nil && !errors.Is(err, exthashmap.RecordExists{}) {
			_ = ehm.CloseFiles()
			return
		}
	}

	deleted := 0
	for i := 0; i < c.Keys; i += 2 {
		var n int
		n, err = ehm.Delete(int32(i))
		if err != nil {
			_ = ehm.CloseFiles()
			return
		}
		deleted += n
	}
	log.Printf("Deleted %d records with even keys", deleted)
	err = ehm.CloseFiles()
	if err != nil {
		return
	}

	ehm, info, err = exthashmap.NewExtHashMap(name, codec.Int32{}, codec.String(24), hmConf)
	if err != nil {
		return
	}
	defer func() {
		if c.Keep {
			if cerr := ehm.CloseFiles(); cerr != nil && err == nil {
				err = cerr
			}
			return
		}
		if rerr := ehm.RemoveFiles(); rerr != nil && err == nil {
			err = rerr
		}
	}()
	log.Printf("Reopened %s: %d buckets, global depth %d", name, info.NumberOfBuckets, info.GlobalDepth)

	missing := 0
	for i := 1; i < c.Keys; i += 2 {
		var values []string
		values, err = ehm.Search(int32(i))
		if err != nil {
			return
		}
		if len(values) != 1 || values[0] != fmt.Sprintf("value-%d", i) {
			missing++
		}
	}
	if missing > 0 {
		return fmt.Errorf("%d odd keys not found after reopen", missing)
	}

	return printStat(ehm)
}

// stringKeys - Builds a string to int64 hash map with the polynomial string hash and looks keys up by value
func stringKeys(c Config, logger *slog.Logger) (err error) {
	name := filepath.Join(c.Dir, "demo-str")
	hmConf := exthashmap.Conf[string]{
		RecordsPerBucket: c.RecordsPerBucket,
		HashFunc:         hashfunc.Poly31,
		Logger:           logger,
	}
	if c.Bloom {
		hmConf.BloomFilterKeys = uint(c.Keys)
	}

	ehm, info, err := exthashmap.NewExtHashMap(name, codec.String(24), codec.Int64{}, hmConf)
	if err != nil {
		return
	}
	defer func() {
		if c.Keep {
			if cerr := ehm.CloseFiles(); cerr != nil && err == nil {
				err = cerr
			}
			return
		}
		if rerr := ehm.RemoveFiles(); rerr != nil && err == nil {
			err = rerr
		}
	}()
	log.Printf("Opened %s: %d buckets, global depth %d", name, info.NumberOfBuckets, info.GlobalDepth)

	for i := 0; i < c.Keys; i++ {
		err = ehm.Insert(fmt.Sprintf("key-%d", i), int64(i%100))
		if err != nil && !errors.Is(err, exthashmap.RecordExists{}) {
			return
		}
	}

	values, err := ehm.Search("key-42")
	if err != nil {
		return
	}
	log.Printf("Search key-42: %v", values)

	keys, err := ehm.SearchKeysByValue(42)
	if err != nil {
		return
	}
	log.Printf("Keys with value 42: %d", len(keys))

	return printStat(ehm)
}

func printStat[K, V any](ehm *exthashmap.ExtHashMap[K, V]) (err error) {
	stat, err := ehm.Stat(false)
	if err != nil {
		return
	}

	log.Printf("Records: %d, buckets: %d, global depth: %d, fill factor: %.3f",
		stat.Records, stat.Buckets, stat.GlobalDepth, stat.AverageFillFactor)

	return
}
