// Command qrtone-recv decodes raw float32 PCM samples from a file.
package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	qrtone "github.com/doismellburning/qrtone/src"
)

func main() {
	var (
		in         = pflag.StringP("in", "i", "", "Input file of raw little-endian float32 PCM")
		sampleRate = pflag.Float64P("sample-rate", "r", 44100, "Sample rate in Hz")
		help       = pflag.Bool("help", false, "Display help text")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: qrtone-recv --in FILE [flags]\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help || *in == "" {
		pflag.Usage()
		if *help {
			return
		}
		os.Exit(1)
	}

	f, err := os.Open(*in)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer f.Close()

	m := qrtone.NewModem(*sampleRate)
	buf := make([]float32, 0, 4096)

	for {
		maxLen := m.GetMaximumLength()
		if maxLen <= 0 {
			maxLen = 1
		}
		if cap(buf) < maxLen {
			buf = make([]float32, maxLen)
		}
		chunk := buf[:maxLen]
		if err := binary.Read(f, binary.LittleEndian, chunk); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		if m.PushSamples(chunk) {
			fmt.Printf("payload: %q\n", m.GetPayload())
			fmt.Printf("fixed errors: %d\n", m.GetFixedErrors())
			fmt.Printf("payload sample index: %d\n", m.GetPayloadSampleIndex())
			return
		}
	}

	fmt.Fprintln(os.Stderr, "qrtone-recv: no frame decoded before end of input")
	os.Exit(1)
}
