package classdb

import "testing"

func TestLoad_KnownServices(t *testing.T) {
	db := Load()

	for _, class := range []string{"Workspace", "Lighting", "ServerScriptService", "StarterPlayer"} {
		if !db.IsService(class) {
			t.Errorf("IsService(%s) = false, want true", class)
		}
	}
	for _, class := range []string{"Folder", "Part", "Script", "Model", ""} {
		if db.IsService(class) {
			t.Errorf("IsService(%s) = true, want false", class)
		}
	}
}

func TestFromList(t *testing.T) {
	db := FromList([]string{"CustomService"})
	if !db.IsService("CustomService") {
		t.Error("IsService(CustomService) = false, want true")
	}
	if db.IsService("Workspace") {
		t.Error("IsService(Workspace) = true for a list that omits it")
	}
}

func TestParseList_SkipsCommentsAndBlanks(t *testing.T) {
	set := parseList("# header\n\nAlpha\n  Beta  \n# tail\n")
	if len(set) != 2 {
		t.Fatalf("len = %d, want 2", len(set))
	}
	if _, ok := set["Beta"]; !ok {
		t.Error("whitespace-trimmed entry missing")
	}
}
