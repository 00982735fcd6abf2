package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"hawkdrive/geometry"
	"hawkdrive/store"
	"hawkdrive/track"
)

var (
	dumpCyl  int
	dumpHead int
)

var dumpCmd = &cobra.Command{
	Use:   "dump IMAGE",
	Short: "Encode one track and decode it back",
	Long: "Materialize one track of IMAGE into raw bits, then read the " +
		"address and data fields back through the bit-stream primitives.",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if dumpCyl < 0 || dumpCyl >= geometry.NumCylinders {
			cobra.CheckErr(fmt.Errorf("cylinder %d out of range 0-%d",
				dumpCyl, geometry.NumCylinders-1))
		}
		if dumpHead < 0 || dumpHead >= geometry.NumHeads {
			cobra.CheckErr(fmt.Errorf("head %d out of range 0-%d",
				dumpHead, geometry.NumHeads-1))
		}

		img, err := store.Open(args[0])
		cobra.CheckErr(err)
		defer img.Close()

		buffer, err := track.Encode(img, dumpCyl, dumpHead, nil)
		cobra.CheckErr(err)

		fmt.Printf("track %d.%d, %d raw bits\n", dumpCyl, dumpHead, geometry.RawTrackBits)
		for sector := 0; sector < geometry.SectorsPerTrack; sector++ {
			f := track.DecodeSector(buffer, sector)

			status := "ok"
			if f.Check != ^f.Addr {
				status = "BAD CHECK WORD"
			}
			fmt.Printf("sector %2d: addr %04x check %04x %-14s sum %02x%02x  %x...\n",
				sector, f.Addr, f.Check, status,
				f.Checksum[0], f.Checksum[1], f.Data[:8])
		}
	},
}

func init() {
	dumpCmd.Flags().IntVar(&dumpCyl, "cyl", 0, "cylinder to dump")
	dumpCmd.Flags().IntVar(&dumpHead, "head", 0, "head to dump")
	rootCmd.AddCommand(dumpCmd)
}
