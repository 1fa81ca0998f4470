package schema

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestBuildSchema(t *testing.T) {
	root := &cobra.Command{Use: "loop"}
	root.PersistentFlags().String("rpc-url", "", "rpc endpoint")
	child := &cobra.Command{Use: "swap", Short: "swap loops"}
	leaf := &cobra.Command{Use: "plan", Short: "plan a swap loop", Run: func(*cobra.Command, []string) {}}
	leaf.Flags().String("supply", "", "supply asset")
	leaf.Flags().Uint16("loops", 1, "loop iterations")
	_ = leaf.MarkFlagRequired("supply")
	child.AddCommand(leaf)
	root.AddCommand(child)

	s, err := Build(root, "swap plan")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if s.Path != "loop swap plan" {
		t.Fatalf("unexpected path: %s", s.Path)
	}
	if len(s.Flags) != 2 {
		t.Fatalf("unexpected flags: %+v", s.Flags)
	}
	var supplyRequired bool
	for _, f := range s.Flags {
		if f.Name == "supply" {
			supplyRequired = f.Required
		}
	}
	if !supplyRequired {
		t.Fatalf("expected supply to be marked required: %+v", s.Flags)
	}
	if len(s.GlobalFlags) != 1 || s.GlobalFlags[0].Name != "rpc-url" {
		t.Fatalf("unexpected global flags: %+v", s.GlobalFlags)
	}

	if _, err := Build(root, "swap execute"); err == nil {
		t.Fatal("expected unknown command error")
	}
}
