package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"hawkdrive/store"
)

var formatCmd = &cobra.Command{
	Use:   "format IMAGE",
	Short: "Create a blank disk image",
	Long:  "Create a blank, full-size Hawk disk image file.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		img, err := store.Create(args[0])
		cobra.CheckErr(err)
		defer img.Close()

		fmt.Printf("created %s, %d bytes\n", args[0], store.ImageBytes)
	},
}

func init() {
	rootCmd.AddCommand(formatCmd)
}
