// The orcdump tool inspects ORC files: its meta command prints the schema
// and stripe directory, its cat command prints rows as JSON lines.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow/go/v15/arrow/array"
	"github.com/spf13/cobra"

	"github.com/mewkiz/orc"
)

func main() {
	root := &cobra.Command{
		Use:           "orcdump",
		Short:         "Inspect ORC files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMetaCmd(), newCatCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "orcdump:", err)
		os.Exit(1)
	}
}

func newMetaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "meta FILE",
		Short: "Print schema, compression and stripe directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := orc.Open(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			schema, err := r.Schema()
			if err != nil {
				return err
			}
			ps := r.PostScript()
			fmt.Printf("rows:        %d\n", r.NumberOfRows())
			fmt.Printf("compression: %v (block size %d)\n", ps.Compression, ps.CompressionBlockSize)
			fmt.Printf("schema:      %v\n", schema)
			fmt.Println("stripes:")
			for i, info := range r.Footer().Stripes {
				fmt.Printf("  %4d: offset=%d rows=%d data=%d footer=%d\n",
					i, info.Offset, info.NumberOfRows, info.DataLength, info.FooterLength)
			}
			return nil
		},
	}
}

func newCatCmd() *cobra.Command {
	var (
		batchSize int
		fields    []string
	)
	cmd := &cobra.Command{
		Use:   "cat FILE",
		Short: "Print rows as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := orc.Open(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			rr, err := r.RecordReader(batchSize, fields...)
			if err != nil {
				return err
			}
			for {
				rec, err := rr.Next()
				if err != nil {
					if err == io.EOF {
						return nil
					}
					return err
				}
				if err := array.RecordToJSON(rec, os.Stdout); err != nil {
					return err
				}
			}
		},
	}
	cmd.Flags().IntVar(&batchSize, "batch-size", orc.DefaultBatchSize, "rows per record batch")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "top-level fields to read")
	return cmd
}
