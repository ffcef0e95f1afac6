package main

import (
	"io"
	"strings"
	"time"

	"github.com/k1LoW/errors"
	"github.com/looptalks/bubble"
	"github.com/looptalks/bubble/internal/server"
	"github.com/spf13/cobra"
)

var (
	renderText   string
	renderPostID string
	renderTime   string
	renderOut    string
	renderHandle string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "render one message to a PNG file",
	Long: `render one message to a PNG file.
Use --text - to read the message from stdin and -o - to write the image to stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			err = errors.WithStack(err)
		}()
		msg := renderText
		if msg == "-" {
			b, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			msg = strings.TrimRight(string(b), "\n")
		}
		timeLabel := renderTime
		if timeLabel == "" {
			timeLabel = time.Now().Format(server.TimeLayout)
		}

		r, err := bubble.NewRenderer(bubble.WithHandle(renderHandle))
		if err != nil {
			return err
		}
		c, err := r.Draw(msg, renderPostID, timeLabel)
		if err != nil {
			return err
		}

		if renderOut == "-" {
			return c.EncodePNG(cmd.OutOrStdout())
		}
		if err := c.SavePNG(renderOut); err != nil {
			return err
		}
		logger.Info("wrote image", "path", renderOut, "lines", len(r.Lines(msg)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&renderText, "text", "t", "", "message text, or - for stdin")
	renderCmd.Flags().StringVarP(&renderPostID, "post-id", "p", "", "post id printed in the header, without '#'")
	renderCmd.Flags().StringVarP(&renderTime, "time", "", "", "time label (default: now, as 03:04 PM)")
	renderCmd.Flags().StringVarP(&renderOut, "output", "o", "post.png", "output file, or - for stdout")
	renderCmd.Flags().StringVarP(&renderHandle, "handle", "", bubble.DefaultHandle, "handle printed in the header")
	_ = renderCmd.MarkFlagRequired("text")
	_ = renderCmd.MarkFlagRequired("post-id")
}
