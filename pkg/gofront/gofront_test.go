package gofront_test

import (
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"

	"github.com/diego200052/lockpair/pkg/gofront"
)

func TestSelfDeadlock(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), gofront.Analyzer, "selfdeadlock")
}

func TestDeadlock(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), gofront.Analyzer, "deadlock")
}

func TestLockless(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), gofront.Analyzer, "lockless")
}

func TestBlocking(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), gofront.Analyzer, "blocking")
}

func TestStrictMode(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), gofront.Analyzer, "strictmode")
}
