package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/k1LoW/errors"
	"github.com/looptalks/bubble"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// sampleMessages cover the wrapping and overflow paths of the renderer.
var sampleMessages = []string{
	"Hello world",
	"Room available from March 10.\nPrivate washroom,\nshared kitchen,\nlaundry on site.",
	"Looking to connect with someone who works at the north location. I really need a reference and will gladly return the favour. Please reach out!",
	"Supercalifragilisticexpialidocious-and-then-some-more-characters-to-overflow-the-line",
	"Spacing    is   collapsed and tabs\tbecome spaces.",
}

var samplesOut string

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "render the built-in sample messages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			err = errors.WithStack(err)
		}()
		if err := os.MkdirAll(samplesOut, 0o755); err != nil {
			return err
		}
		r, err := bubble.NewRenderer()
		if err != nil {
			return err
		}

		eg, _ := errgroup.WithContext(cmd.Context())
		for i, msg := range sampleMessages {
			eg.Go(func() error {
				postID := fmt.Sprintf("MSG%03d", i+1)
				c, err := r.Draw(msg, postID, "12:00 PM")
				if err != nil {
					return fmt.Errorf("%s: %w", postID, err)
				}
				path := filepath.Join(samplesOut, fmt.Sprintf("message-%02d.png", i+1))
				if err := c.SavePNG(path); err != nil {
					return err
				}
				logger.Info("wrote sample", "path", path, "lines", len(r.Lines(msg)))
				return nil
			})
		}
		return eg.Wait()
	},
}

func init() {
	rootCmd.AddCommand(samplesCmd)
	samplesCmd.Flags().StringVarP(&samplesOut, "output", "o", "test-outputs", "output directory")
}
