// bytesort - concurrent payload sorting for bitmap-style images
// Modes:
//
//	-i input.bmp -o output.bmp   sort one file
//	-d images                     sort every .bmp in a directory into a sibling output directory
//	-r N                          synthesize an image with N random payload bytes and show the result
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"bytesort"
	"bytesort/internal/bitmap"
	"bytesort/pqueue"
)

const (
	// Header size of a synthesized image: file header plus a 40-byte info header.
	randomHeaderSize = 54

	// Above this many bytes -r prints only the partition table.
	maxPrintBytes = 256
)

func main() {
	inFile := pflag.StringP("input", "i", "", "source image")
	outFile := pflag.StringP("output", "o", "", "destination image (default <input>_sorted.bmp)")
	inDir := pflag.StringP("dir", "d", "", "directory containing .bmp files to sort")
	rN := pflag.IntP("random", "r", -1, "synthesize an image with N random payload bytes")
	workers := pflag.IntP("workers", "w", runtime.NumCPU(), "number of scan workers")
	descending := pflag.Bool("descending", false, "emit the payload largest first")
	report := pflag.Bool("report", false, "print a JSON run report to stdout")
	verbose := pflag.BoolP("verbose", "v", false, "debug logging")
	pflag.Parse()

	// Exactly one mode must be used
	modesUsed := 0
	if *rN != -1 {
		modesUsed++
	}
	if *inFile != "" {
		modesUsed++
	}
	if *inDir != "" {
		modesUsed++
	}
	if modesUsed != 1 {
		exitErr("Use exactly one mode: -r, -i, or -d")
	}

	logger, err := newLogger(*verbose)
	if err != nil {
		exitErr(err.Error())
	}
	defer logger.Sync()

	order := pqueue.Ascending
	if *descending {
		order = pqueue.Descending
	}
	ctx := context.Background()
	opts := bytesort.Options{Logger: logger}

	switch {
	case *rN != -1:
		if *rN < 0 {
			exitErr("N must be >= 0")
		}
		if err := runRandom(ctx, *rN, *workers, order, opts); err != nil {
			exitErr(err.Error())
		}

	case *inFile != "":
		dest := *outFile
		if dest == "" {
			dest = sortedName(*inFile)
		}
		cfg := bytesort.Config{Workers: *workers, Source: *inFile, Dest: dest, Order: order}
		rep, err := bytesort.Run(ctx, cfg, opts)
		if err != nil {
			exitErr(err.Error())
		}
		if *report {
			if err := rep.WriteJSON(os.Stdout); err != nil {
				exitErr(err.Error())
			}
		}

	case *inDir != "":
		reports, err := processDirectory(ctx, *inDir, *workers, order, opts)
		if err != nil {
			exitErr(err.Error())
		}
		if *report {
			for _, rep := range reports {
				if err := rep.WriteJSON(os.Stdout); err != nil {
					exitErr(err.Error())
				}
			}
		}
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// ---------- Random Mode ----------

func runRandom(ctx context.Context, n, workers int, order pqueue.Order, opts bytesort.Options) error {
	dir, err := os.MkdirTemp("", "bytesort-")
	if err != nil {
		return errors.Wrap(err, "create temp dir")
	}
	defer os.RemoveAll(dir)

	payload := generateRandom(n)
	src := filepath.Join(dir, "random.bmp")
	if err := writeImage(src, payload); err != nil {
		return err
	}

	dst := filepath.Join(dir, "random_sorted.bmp")
	cfg := bytesort.Config{Workers: workers, Source: src, Dest: dst, Order: order}
	rep, err := bytesort.Run(ctx, cfg, opts)
	if err != nil {
		return err
	}
	out, err := os.ReadFile(dst)
	if err != nil {
		return errors.Wrap(err, "read result")
	}

	if n <= maxPrintBytes {
		fmt.Println("Original payload:")
		fmt.Println(payload)
	}
	fmt.Println("\nPartitions:")
	printPartitions(rep.Partitions)
	if n <= maxPrintBytes {
		fmt.Printf("\nSorted payload (%s):\n", order)
		fmt.Println(out[randomHeaderSize:])
	}
	return nil
}

func generateRandom(n int) []byte {
	payload := make([]byte, n)
	rand.Read(payload)
	return payload
}

func writeImage(path string, payload []byte) error {
	content := bitmap.NewHeader(randomHeaderSize, uint32(randomHeaderSize+len(payload)))
	content = append(content, make([]byte, randomHeaderSize-len(content))...)
	content = append(content, payload...)
	return errors.Wrap(os.WriteFile(path, content, 0o644), "write synthesized image")
}

// ---------- Directory Mode ----------

func processDirectory(ctx context.Context, dir string, workers int, order pqueue.Order, opts bytesort.Options) ([]*bytesort.Report, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, errors.Errorf("directory not found: %s", dir)
	}

	parent := filepath.Dir(dir)
	base := filepath.Base(dir)
	outDir := filepath.Join(parent, base+"_sorted")

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create output directory")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "read directory")
	}

	var reports []*bytesort.Report
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".bmp") {
			continue
		}
		cfg := bytesort.Config{
			Workers: workers,
			Source:  filepath.Join(dir, e.Name()),
			Dest:    filepath.Join(outDir, e.Name()),
			Order:   order,
		}
		rep, err := bytesort.Run(ctx, cfg, opts)
		if err != nil {
			return reports, errors.Wrapf(err, "sort %s", e.Name())
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

// ---------- Utils ----------

func sortedName(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_sorted" + ext
}

func printPartitions(parts []bytesort.PartitionStat) {
	for _, p := range parts {
		fmt.Printf("Partition %d: offset %d, quota %d, read %d\n", p.Index, p.Offset, p.Quota, p.Read)
	}
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, "Error:", msg)
	os.Exit(1)
}
