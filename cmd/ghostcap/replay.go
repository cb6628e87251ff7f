package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/irctrakz/ghostcap/pkg/core"
	"github.com/irctrakz/ghostcap/pkg/logging"
	"github.com/irctrakz/ghostcap/pkg/pcap"
	"github.com/spf13/cobra"
)

const fcsLen = 4

var replaySession string

var replayCmd = &cobra.Command{
	Use:   "replay FILE...",
	Short: "Re-encode 802.11 frames from existing captures",
	Long:  "Feed every frame of one or more pcap files (802.11 or radiotap link type) through the capture encoder, as if received from the radio",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReplay(args)
	},
}

func init() {
	replayCmd.Flags().StringVarP(&replaySession, "session", "s", "", "Session base name (defaults to capture.baseName)")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(files []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	tr, err := openTransport(cfg.Serial)
	if err != nil {
		return err
	}
	defer tr.Close()

	enc := pcap.NewEncoder(cfg.Capture, tr)
	if err := enc.OpenSession(replaySession); err != nil {
		logging.Warnf("Capture file unavailable, continuing on serial: %v", err)
	}
	logging.Infof("Capture session writing to %s", enc.Destination())

	if d := cfg.MetricsInterval(); d > 0 {
		go runMetricsReporter(ctx, d, cfg.Metrics.Format, []metricsSource{
			{Name: "pcap", Metrics: enc.Metrics},
		})
	}

	var total int
	for _, name := range files {
		if ctx.Err() != nil {
			break
		}
		n, err := replayFile(name, enc, ctx.Done())
		total += n
		if err != nil {
			enc.CloseSession()
			return err
		}
	}
	err = enc.CloseSession()
	logging.Infof("Replayed %d frames", total)
	return err
}

func replayFile(name string, enc *pcap.Encoder, done <-chan struct{}) (int, error) {
	f, err := os.Open(name)
	if err != nil {
		return 0, fmt.Errorf("failed to open capture: %w", err)
	}
	defer f.Close()

	r, err := pcapgo.NewReader(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	lt := r.LinkType()
	if lt != layers.LinkTypeIEEE802_11 && lt != layers.LinkTypeIEEE80211Radio {
		return 0, fmt.Errorf("%s: unsupported link type %s", name, lt)
	}

	log := logging.Tag(logging.TagPCAP).WithField("file", name)
	var n int
	for {
		select {
		case <-done:
			return n, nil
		default:
		}
		data, _, err := r.ReadPacketData()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("%s: %w", name, err)
		}
		frame, err := dot11Payload(lt, data)
		if err != nil {
			log.WithError(err).Debug("Skipping packet")
			continue
		}
		switch err := enc.Record(frame); {
		case err == nil:
			n++
		case errors.Is(err, core.ErrInvalidArgument), errors.Is(err, core.ErrResourceExhausted):
			log.WithError(err).Debug("Frame rejected")
		case errors.Is(err, core.ErrIO):
			// the lost chunk is logged by the sink
			n++
		default:
			return n, err
		}
	}
}

// dot11Payload strips any radiotap header and trailing FCS.
func dot11Payload(lt layers.LinkType, data []byte) ([]byte, error) {
	if lt == layers.LinkTypeIEEE802_11 {
		return data, nil
	}
	if len(data) < 8 {
		return nil, fmt.Errorf("%d byte packet too short for radiotap", len(data))
	}
	if n := int(binary.LittleEndian.Uint16(data[2:4])); n < 8 || n > len(data) {
		return nil, fmt.Errorf("radiotap length %d invalid for %d byte packet", n, len(data))
	}
	var rt layers.RadioTap
	if err := rt.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
		return nil, err
	}
	frame := data[rt.Length:]
	if rt.Flags&layers.RadioTapFlagsFCS != 0 && len(frame) >= fcsLen {
		frame = frame[:len(frame)-fcsLen]
	}
	return frame, nil
}
