package main

import (
	"io"
	"os"
)

// readSource reads path's contents, or stdin when path is "-" or empty.
func readSource(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// sourceName returns a template name suitable for diagnostics/loader
// resolution: the path exactly as given, or "<stdin>" when read from stdin.
func sourceName(path string) string {
	if path == "" || path == "-" {
		return "<stdin>"
	}
	return path
}
