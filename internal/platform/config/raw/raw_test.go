package raw

import "testing"

func TestConfGet(t *testing.T) {
	t.Setenv("MODHOST_NAME", " modhost ")
	t.Setenv("LOG_LEVEL", " info ")

	root := New()
	logCfg := root.Prefix("LOG_")

	tests := []struct {
		name string
		conf Conf
		key  string
		def  string
		want string
	}{
		{name: "root hit", conf: root, key: "MODHOST_NAME", def: "x", want: "modhost"},
		{name: "prefixed hit", conf: logCfg, key: "LEVEL", def: "x", want: "info"},
		{name: "missing returns default", conf: logCfg, key: "MISSING", def: "defv", want: "defv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.conf.Get(tt.key, tt.def); got != tt.want {
				t.Fatalf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestConfGetBool(t *testing.T) {
	c := New().Prefix("B_")

	t.Setenv("B_T1", "true")
	t.Setenv("B_T2", "1")
	t.Setenv("B_T3", "YES")
	t.Setenv("B_T4", " on ")
	t.Setenv("B_F1", "false")
	t.Setenv("B_F2", "nope")

	cases := map[string]bool{"T1": true, "T2": true, "T3": true, "T4": true, "F1": false, "F2": false}
	for k, want := range cases {
		if got := c.GetBool(k, !want); got != want {
			t.Fatalf("GetBool(%q) = %v, want %v", k, got, want)
		}
	}
	if !c.GetBool("MISSING", true) {
		t.Fatal("missing key should return default")
	}
}

func TestConfGetInt(t *testing.T) {
	c := New().Prefix("I_")
	t.Setenv("I_OK", " 42 ")
	t.Setenv("I_NEG", "-3")
	t.Setenv("I_BAD", "4x")

	if got := c.GetInt("OK", 0); got != 42 {
		t.Fatalf("GetInt(OK) = %d, want 42", got)
	}
	if got := c.GetInt("NEG", 7); got != 7 {
		t.Fatalf("GetInt(NEG) = %d, want default 7", got)
	}
	if got := c.GetInt("BAD", 7); got != 7 {
		t.Fatalf("GetInt(BAD) = %d, want default 7", got)
	}
	if got := c.GetInt("MISSING", 9); got != 9 {
		t.Fatalf("GetInt(MISSING) = %d, want default 9", got)
	}
}
