package header

import "testing"

func TestParseRoundTrip(t *testing.T) {
	content := Build("sometoken", "Tic Tac Toe") + "It is your turn!"

	token, name, ok := Parse(content)
	if !ok {
		t.Fatal("expected header to parse")
	}
	if token != "sometoken" {
		t.Fatalf("token = %q", token)
	}
	if name != "Tic Tac Toe" {
		t.Fatalf("name = %q", name)
	}
}

func TestNameWithoutToken(t *testing.T) {
	content := Build("tok", "Chess") + "body"
	name, ok := Name(content)
	if !ok || name != "Chess" {
		t.Fatalf("Name = %q, %v", name, ok)
	}
}

func TestNoFenceNoHeader(t *testing.T) {
	for _, content := range []string{
		"",
		"just a chat message",
		"text before ```tok\nName\n``` the fence",
	} {
		if _, _, ok := Parse(content); ok {
			t.Fatalf("expected no header in %q", content)
		}
	}
}

func TestTerminalHeaderDoesNotParse(t *testing.T) {
	content := Terminal("Chess") + "<@1> has won the game!"

	if _, _, ok := Parse(content); ok {
		t.Fatal("terminal header must not parse as a live game")
	}
	if _, ok := Name(content); ok {
		t.Fatal("finished games must not route anywhere")
	}
}

func TestMalformedInteriors(t *testing.T) {
	for _, content := range []string{
		"```\n```",
		"```one\ntwo\nthree\n```",
		"``` \nName\n```",
	} {
		if _, _, ok := Parse(content); ok {
			t.Fatalf("expected no parse for %q", content)
		}
	}
}
