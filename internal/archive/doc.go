// Package archive lists media members of zip and tar archives so `abb list`
// can preview a downloaded bundle before it is unpacked.
package archive
