package client

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atinyakov/healthmate/internal/models"
)

// PromptVital asks for each measurement on out and reads the answers from
// in. The timestamp is left empty so the server records "now".
func PromptVital(in io.Reader, out io.Writer) (models.VitalInput, error) {
	scanner := bufio.NewScanner(in)
	var v models.VitalInput

	ints := []struct {
		label string
		dst   **int
	}{
		{"Systolic (mmHg)", &v.Systolic},
		{"Diastolic (mmHg)", &v.Diastolic},
		{"Heart rate (BPM)", &v.HeartRate},
		{"SpO2 (%)", &v.SpO2},
	}
	for _, f := range ints {
		n, err := promptInt(scanner, out, f.label)
		if err != nil {
			return models.VitalInput{}, err
		}
		*f.dst = &n
	}

	raw, err := promptLine(scanner, out, "Temperature (°F)")
	if err != nil {
		return models.VitalInput{}, err
	}
	temp, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return models.VitalInput{}, fmt.Errorf("%w: temperature %q", models.ErrInvalidInput, raw)
	}
	v.Temperature = &temp

	weight, err := promptInt(scanner, out, "Weight (lbs)")
	if err != nil {
		return models.VitalInput{}, err
	}
	v.Weight = &weight

	return v, v.Validate()
}

func promptLine(scanner *bufio.Scanner, out io.Writer, label string) (string, error) {
	fmt.Fprintf(out, "Enter %s: ", label)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(scanner.Text()), nil
}

func promptInt(scanner *bufio.Scanner, out io.Writer, label string) (int, error) {
	raw, err := promptLine(scanner, out, label)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", models.ErrInvalidInput, strings.ToLower(label), raw)
	}
	return n, nil
}
