// Command qrtone-send encodes a payload into raw float32 PCM samples.
package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/spf13/pflag"

	qrtone "github.com/doismellburning/qrtone/src"
)

func main() {
	var (
		payload    = pflag.StringP("payload", "m", "", "Payload text to encode")
		eccName    = pflag.StringP("ecc", "e", "Q", "ECC level: L, M, Q or H")
		crc        = pflag.BoolP("crc", "c", true, "Append a CRC-16 trailer")
		peakDB     = pflag.Float64P("peak", "k", -16, "Peak tone level in dBFS")
		sampleRate = pflag.Float64P("sample-rate", "r", 44100, "Sample rate in Hz")
		out        = pflag.StringP("out", "o", "", "Output file for raw little-endian float32 PCM")
		help       = pflag.Bool("help", false, "Display help text")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: qrtone-send --payload TEXT --out FILE [flags]\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help || *payload == "" || *out == "" {
		pflag.Usage()
		if *help {
			return
		}
		os.Exit(1)
	}

	eccLevel, err := qrtone.ParseECCLevel(*eccName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	m := qrtone.NewModem(*sampleRate)
	total := m.SetPayloadExt([]byte(*payload), eccLevel, *crc)
	if total == 0 {
		fmt.Fprintln(os.Stderr, "qrtone-send: payload rejected, check --ecc")
		os.Exit(1)
	}

	samples := make([]float32, total)
	peak := float32(math.Pow(10, *peakDB/20))
	m.GetSamples(samples, 0, peak)

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer f.Close()

	if err := binary.Write(f, binary.LittleEndian, samples); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("wrote %d samples (%.2fs) to %s\n", total, float64(total)/(*sampleRate), *out)
}
