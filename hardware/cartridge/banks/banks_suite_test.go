package banks_test

//go:generate mockgen -destination "mock_banks_test.go" -package $GOPACKAGE -write_package_comment=false github.com/jetsetilly/gbxfs/hardware/cartridge/banks Switcher
