package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"hawkdrive/geometry"
	"hawkdrive/store"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show drive geometry and configured units",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("geometry:   %d cylinders, %d heads, %d sectors of %d bytes\n",
			geometry.NumCylinders, geometry.NumHeads,
			geometry.SectorsPerTrack, geometry.SectorBytes)
		fmt.Printf("raw track:  %d bits (%d per sector)\n",
			geometry.RawTrackBits, geometry.RawSectorBits)
		fmt.Printf("rotation:   %.1f ms (%.0f RPM), %.4f ms per sector\n",
			float64(geometry.RotationNS)/1e6,
			60e9/float64(geometry.RotationNS),
			float64(geometry.SectorNS)/1e6)
		fmt.Printf("seek:       %.1f ms nominal, %.0f ms on fault\n",
			float64(geometry.SeekDelayNS)/1e6,
			float64(geometry.SeekFaultDelayNS)/1e6)
		fmt.Printf("image size: %d bytes\n", store.ImageBytes)

		for _, u := range conf.Unit {
			fmt.Printf("unit %d:     %s (spindle offset %.3f ms)\n",
				u.Num, u.Image, float64(u.RotationOffsetNS)/1e6)
		}
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
