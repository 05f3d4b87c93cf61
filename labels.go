package hybridtrack

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadLabels reads the class labels the model was trained with from the given
// text file, one label per line.  Blank lines are ignored.
func LoadLabels(file string) ([]string, error) {

	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening labels: %w", err)
	}

	defer f.Close()

	scanner := bufio.NewScanner(f)

	var labels []string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		labels = append(labels, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading labels: %w", err)
	}

	if len(labels) == 0 {
		return nil, fmt.Errorf("labels file %s is empty", file)
	}

	return labels, nil
}

// Label returns the label for the class id, or a placeholder when the id is
// out of range
func Label(labels []string, classID int) string {
	if classID < 0 || classID >= len(labels) {
		return fmt.Sprintf("class%d", classID)
	}
	return labels[classID]
}
