package cartfs_test

//go:generate mockgen -destination "mock_cartfs_test.go" -package $GOPACKAGE -write_package_comment=false github.com/jetsetilly/gbxfs/cartfs Invalidator
