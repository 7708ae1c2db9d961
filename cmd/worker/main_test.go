package main

import (
	"testing"

	"github.com/scholaris-erp/scholaris/internal/app"
	_ "github.com/scholaris-erp/scholaris/testing"
)

func TestMainSkipsStartupInTestMode(t *testing.T) {
	app.RefreshTestMode()
	if !app.InTestMode() {
		t.Fatalf("expected test mode to be enabled by the testing package")
	}
	main()
}
