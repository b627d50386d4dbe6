package urdf

import (
	"errors"
	"testing"

	"go.viam.com/test"

	"github.com/roboviz/urdfkit"
)

func TestResolvePackagePath(t *testing.T) {
	for _, tc := range []struct {
		name        string
		ref         string
		packages    PackageMap
		workingPath string
		want        string
	}{
		{
			"named package entry",
			"package://arm_description/meshes/link1.stl",
			PackageMap{"arm_description": "/assets/arm"},
			"",
			"/assets/arm/meshes/link1.stl",
		},
		{
			"default entry ending in package name",
			"package://arm_description/meshes/link1.stl",
			PackageMap{"default": "/assets/arm_description"},
			"",
			"/assets/arm_description/meshes/link1.stl",
		},
		{
			"single entry doubles as default",
			"package://arm_description/meshes/link1.stl",
			PackageMap{"other": "/assets/arm_description"},
			"",
			"/assets/arm_description/meshes/link1.stl",
		},
		{
			"default entry not ending in package name",
			"package://arm_description/meshes/link1.stl",
			PackageMap{"default": "/assets"},
			"",
			"/assets/arm_description/meshes/link1.stl",
		},
		{
			"relative reference against working path",
			"meshes/link1.stl",
			nil,
			"/robots/arm",
			"/robots/arm/meshes/link1.stl",
		},
		{
			"leading slash stripped before joining",
			"/meshes/link1.stl",
			nil,
			"/robots/arm",
			"/robots/arm/meshes/link1.stl",
		},
		{
			"dot segments normalized",
			"meshes/../link1.stl",
			nil,
			"/robots/arm",
			"/robots/arm/link1.stl",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolvePackagePath(tc.ref, tc.packages, tc.workingPath)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, got, test.ShouldEqual, tc.want)
		})
	}
}

func TestResolvePackagePathUnknownPackage(t *testing.T) {
	_, err := ResolvePackagePath("package://nowhere/m.stl", PackageMap{"a": "/a", "b": "/b"}, "")
	test.That(t, err, test.ShouldNotBeNil)
	var formatErr *urdfkit.FormatError
	test.That(t, errors.As(err, &formatErr), test.ShouldBeTrue)
	test.That(t, formatErr.Msg, test.ShouldEqual, "package not found")
	test.That(t, formatErr.Elem, test.ShouldEqual, "nowhere")
}

func TestMapFileReader(t *testing.T) {
	reader := MapFileReader{"/a.stl": []byte("data")}
	data, err := reader.ReadFile("/a.stl")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldEqual, "data")
	_, err = reader.ReadFile("/missing.stl")
	test.That(t, err, test.ShouldNotBeNil)
}
