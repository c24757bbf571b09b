package translator

import (
	"testing"

	gst "github.com/richinsley/goshadertranslator"
)

func TestMappedNames(t *testing.T) {
	got := MappedNames(map[string]gst.ShaderVariable{
		"u_time":     {Name: "u_time", MappedName: "_uu_time"},
		"a_position": {Name: "a_position", MappedName: "_ua_position"},
		"u_plain":    {Name: "u_plain"},
	})
	want := map[string]string{"u_time": "_uu_time", "a_position": "_ua_position", "u_plain": "u_plain"}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("MappedNames[%q] = %q, want %q", k, got[k], v)
		}
	}
}
