package libmatch

import (
	"testing"

	"github.com/example/excitation-compiler/internal/network"
)

func TestMatchConv(t *testing.T) {
	layer := network.Layer{
		Operator: network.OpConv,
		InW: 4, InH: 4, InChannels: 1,
		OutW: 4, OutH: 4, OutChannels: 10,
		KernelH: 3, KernelW: 3, Stride: 1, Padding: 1,
	}
	info := Info{
		OperatorType:      "Conv",
		InputChannels:     1,
		OutputChannels:    10,
		KernelSize:        []int{3, 3},
		Stride:            []int{1, 1},
		Padding:           []int{1, 1},
		InputTensorShape:  []int{4, 4, 1},
		OutputTensorShape: []int{4, 4, 10},
	}
	if !Match(layer, 10, info) {
		t.Fatal("expected Conv match")
	}
	if Match(layer, 5, info) {
		t.Fatal("width mismatch must not match")
	}
}

func TestMatchPool(t *testing.T) {
	layer := network.Layer{
		Operator: network.OpPool,
		InW: 4, InH: 4, InChannels: 10,
		OutW: 2, OutH: 2, OutChannels: 10,
		KernelH: 2, KernelW: 2, Stride: 2,
	}
	info := Info{
		OperatorType:      "Pool",
		InputChannels:     10,
		OutputChannels:    10,
		KernelSize:        []int{2, 2},
		Stride:            []int{2, 2},
		InputTensorShape:  []int{4, 4, 10},
		OutputTensorShape: []int{2, 2, 10},
	}
	if !Match(layer, 0, info) {
		t.Fatal("expected Pool match (width ignored)")
	}
}

func TestMatchFC(t *testing.T) {
	layer := network.Layer{Operator: network.OpFC, InFeatures: 40, OutFeatures: 25, IsPrevFC: true}
	info := Info{OperatorType: "FC", InFeatures: []int{40}, OutFeatures: []int{10}, IsPrevFC: true}
	if !Match(layer, 10, info) {
		t.Fatal("expected FC match")
	}
	info.IsPrevFC = false
	if Match(layer, 10, info) {
		t.Fatal("isPrevFC mismatch must not match")
	}
}

func TestFind(t *testing.T) {
	layer := network.Layer{Operator: network.OpFC, InFeatures: 40, OutFeatures: 25, IsPrevFC: false}
	infos := []Info{
		{OperatorType: "FC", InFeatures: []int{40}, OutFeatures: []int{10}, IsPrevFC: false},
		{OperatorType: "FC", InFeatures: []int{40}, OutFeatures: []int{5}, IsPrevFC: false},
	}
	got, ok := Find(layer, 5, infos)
	if !ok || got.OutFeatures[0] != 5 {
		t.Fatalf("Find returned %+v, ok=%v", got, ok)
	}
}
