// Package testsupport provides shared fixtures for package tests: temp-dir
// configs, sized files and a fake chart toolchain.
package testsupport
