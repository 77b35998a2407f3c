// Command attrgen generates field definitions and accessors for struct types
// whose fields describe the fields of an attribute.
//
//    attrgen [flags] <package>...
//    attrgen describe [flags] <package>...
//
// For each package, a file named <pkg>.attrdef.go is written. See the
// processor package for details on how types are derived.
package main

func main() {
	Execute()
}
