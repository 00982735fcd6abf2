package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"hawkdrive/drive"
	"hawkdrive/sched"
	"hawkdrive/store"
)

var (
	runUnit   int
	runCyl    int
	runHead   int
	runSector int
)

var runCmd = &cobra.Command{
	Use:   "run IMAGE",
	Short: "Trace a seek and rotation wait against virtual time",
	Long: "Attach IMAGE to a drive unit, seek to a track, wait for a " +
		"sector, and trace the state transitions on a virtual clock.",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		img, err := store.Open(args[0])
		cobra.CheckErr(err)
		defer img.Close()

		sim := sched.NewSimulator()

		var unit *drive.Unit
		notify := func(num int) {
			fmt.Printf("%10.3f ms  unit %d changed: seeking=%v on_cyl=%v "+
				"seek_err=%v addr_int=%v track=%d sector=%d\n",
				float64(sim.Now())/1e6, num,
				unit.Seeking, unit.OnCylinder, unit.SeekError,
				unit.AddrInterlock, unit.CurrentTrack, unit.SectorAddr)
		}
		unit = drive.NewUnit(runUnit, img, sim, sim, notify)
		if cu := conf.FindUnit(runUnit); cu != nil {
			unit.RotationOffset = cu.RotationOffsetNS
		}

		fmt.Printf("%10.3f ms  seek to %d.%d\n", float64(sim.Now())/1e6, runCyl, runHead)
		unit.Seek(runCyl, runHead)
		sim.Run()

		if unit.AddrInterlock {
			fmt.Printf("%10.3f ms  address interlock fault, RTZ\n", float64(sim.Now())/1e6)
			unit.RTZ()
			sim.Run()
			return
		}

		fmt.Printf("%10.3f ms  wait for sector %d\n", float64(sim.Now())/1e6, runSector)
		unit.WaitSector(runSector)
		sim.Run()

		fmt.Printf("%10.3f ms  head at bit %d, cursor at bit %d, %d bits remaining\n",
			float64(sim.Now())/1e6, unit.HeadPos, unit.Track.Cursor(),
			unit.RemainingBits(sim.Now()))
	},
}

func init() {
	runCmd.Flags().IntVar(&runUnit, "unit", 0, "drive unit number")
	runCmd.Flags().IntVar(&runCyl, "cyl", 0, "target cylinder")
	runCmd.Flags().IntVar(&runHead, "head", 0, "target head")
	runCmd.Flags().IntVar(&runSector, "sector", 0, "sector to wait for")
	rootCmd.AddCommand(runCmd)
}
