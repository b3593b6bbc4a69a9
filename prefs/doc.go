// Package prefs facilitates the storage of preference values on disk. Values
// are added to a Disk instance under a key and are then saved and loaded as a
// group.
//
//	dsk, _ := prefs.NewDisk(paths.ResourcePath("", "config"))
//	var port prefs.Int
//	dsk.Add("gbxcart.port", &port)
//	dsk.Load(true)
//
// The file format is one value per line in the form "key :: value". The first
// line of the file is always the WarningBoilerPlate string.
//
// Values can be overridden for the duration of a Load() by pushing a command
// line group with PushCommandLineStack(). The prefs string is of the form
// "key::value; key::value".
package prefs
