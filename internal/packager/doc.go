// Package packager builds the distributable bundles: one zip archive plus a
// sibling manifest per partition.
//
// A manifest has no extension. Its first line is the cycle identifier and
// every following line is the path of one archive member, relative to the
// package root, in the order the members were written. The manifest itself is
// the last archive member.
//
// Members are enumerated with fs.Glob over the root, which sorts lexically, so the
// member order is stable across runs and filesystems. Member timestamps are
// the source modification times and the manifest member is stamped with the
// cycle start, so an unchanged input set yields a byte-identical archive.
package packager
