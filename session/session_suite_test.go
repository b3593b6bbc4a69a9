package session_test

//go:generate mockgen -destination "mock_session_test.go" -package $GOPACKAGE -write_package_comment=false github.com/jetsetilly/gbxfs/session Cartridge
//go:generate mockgen -destination "mock_notifications_test.go" -package $GOPACKAGE -write_package_comment=false github.com/jetsetilly/gbxfs/notifications Notify
