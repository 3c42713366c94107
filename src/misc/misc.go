// Package misc contains some misc helper functions etc. for kmerbank
package misc

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ErrorCheck is a function to throw error to the log and exit the program
func ErrorCheck(msg error) {
	if msg != nil {
		log.Fatalf("terminated\n\nERROR --> %v\n\n", msg)
	}
}

// CheckRequiredFlags is a function to check for required flags before running a kmerbank command
func CheckRequiredFlags(flags *pflag.FlagSet) error {
	missing := ""
	flags.VisitAll(func(flag *pflag.Flag) {
		requiredAnnotation := flag.Annotations[cobra.BashCompOneRequiredFlag]
		if len(requiredAnnotation) == 0 || missing != "" {
			return
		}
		if requiredAnnotation[0] == "true" && !flag.Changed {
			missing = flag.Name
		}
	})
	if missing != "" {
		return errors.New("Required flag `" + missing + "` has not been set")
	}
	return nil
}

// StartLogging opens (or appends to) a log file, creating its directory if needed
func StartLogging(logFile string) *os.File {
	if dir := filepath.Dir(logFile); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			log.Fatal("can't create specified directory for log")
		}
	}
	logFH, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		log.Fatal(err)
	}
	return logFH
}

// CheckDir is a function to check that a directory exists
func CheckDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("no directory specified")
	}
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %v", dir)
		}
		return fmt.Errorf("can't access directory (check permissions): %v", dir)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %v", dir)
	}
	return nil
}

// CheckFile is a function to check that a file can be read
func CheckFile(file string) error {
	if _, err := os.Stat(file); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %v", file)
		}
		return fmt.Errorf("can't access file (check permissions): %v", file)
	}
	return nil
}

// CheckExt is a function to check the extension of a file (a trailing .gz is ignored)
func CheckExt(file string, exts []string) error {
	name := strings.TrimSuffix(file, ".gz")
	for _, ext := range exts {
		if strings.HasSuffix(name, "."+ext) {
			return nil
		}
	}
	return fmt.Errorf("file does not have recognised extension: %v", file)
}

// PrintMemUsage outputs the current, total and OS memory being used. As well as the number
// of garage collection cycles completed.
// lifted from: https://golangcode.com/print-the-current-memory-usage/
func PrintMemUsage() string {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return fmt.Sprintf("[ Heap Allocations: %vMb, OS Memory: %vMb, Num. GC cycles: %v ]", bToMb(m.HeapAlloc), bToMb(m.Sys), m.NumGC)
}

// bToMb converts bytes to megabytes
func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
