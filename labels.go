package yolocore

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// LoadClassNames reads the class names the Model was trained with from the
// given text file.  It should contain one name per line, the line number
// being the class id.  Trailing whitespace is stripped
func LoadClassNames(file string) ([]string, error) {

	// open the file
	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	defer f.Close()

	scanner := bufio.NewScanner(f)

	var names []string

	for scanner.Scan() {
		names = append(names, strings.TrimRightFunc(scanner.Text(), unicode.IsSpace))
	}

	// check for errors during scanning
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return names, nil
}
