package spec_test

import (
	"fmt"

	"github.com/matzehuels/deplist/pkg/spec"
)

func ExampleParse() {
	enabled := func(flag string) bool { return flag == "ssl" }
	tree, err := spec.Parse(">=dev-libs/glib-2.40 ssl? ( dev-libs/openssl:0 ) || ( app-misc/a app-misc/b )", spec.ParseOptions{Enabled: enabled})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	for _, n := range tree.Children {
		fmt.Printf("%T %s\n", n, n)
	}
	// Output:
	// *spec.PackageConstraint >=dev-libs/glib-2.40
	// *spec.Conditional ssl? ( dev-libs/openssl:0 )
	// *spec.AnyOf || ( app-misc/a app-misc/b )
}

func ExampleParseConstraint() {
	c := spec.MustParseConstraint(">=sys-libs/zlib-1.2.8:0::gentoo[static-libs]")
	fmt.Println("name:", c.Name)
	fmt.Println("slot:", c.Slot)
	fmt.Println("repository:", c.Repository)
	fmt.Println("versions:", c.Versions[0])
	fmt.Println("use:", c.Use[0])
	// Output:
	// name: sys-libs/zlib
	// slot: 0
	// repository: gentoo
	// versions: >=1.2.8
	// use: static-libs
}
