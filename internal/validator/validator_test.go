package validator

import (
	"testing"
)

const englishText = "This is a longer piece of text that should be detected as English."

func TestIsValid_EmptyTargetLang(t *testing.T) {
	v := New()

	valid, err := v.IsValid("Some translated text", "")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !valid {
		t.Error("expected valid=true for empty targetLang")
	}
}

func TestIsValid_EmptyTranslation(t *testing.T) {
	v := New()

	for _, text := range []string{"", "   "} {
		valid, err := v.IsValid(text, "en")
		if err == nil {
			t.Errorf("expected error for translation %q", text)
		}
		if valid {
			t.Errorf("expected valid=false for translation %q", text)
		}
	}
}

func TestIsValid_ShortText(t *testing.T) {
	v := New()

	valid, err := v.IsValid("안녕하세요", "EN-US")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !valid {
		t.Error("expected valid=true for short text (below threshold)")
	}
}

func TestIsValid_EnglishToEnglish(t *testing.T) {
	v := New()

	for _, target := range []string{"en", "EN", "EN-US", "en_GB"} {
		valid, err := v.IsValid(englishText, target)
		if err != nil {
			t.Errorf("target %q: unexpected error: %v", target, err)
		}
		if !valid {
			t.Errorf("target %q: expected valid=true", target)
		}
	}
}

func TestIsValid_MismatchedLanguage(t *testing.T) {
	v := New()

	valid, err := v.IsValid(englishText, "KO")
	if err == nil {
		t.Error("expected error for mismatched language")
	}
	if valid {
		t.Error("expected valid=false when detecting English but expecting Korean")
	}
}

func TestIsValid_UntranslatedKorean(t *testing.T) {
	v := New()

	koreanText := "이 문장은 번역되지 않은 한국어 텍스트입니다. 검증기가 이를 감지해야 합니다."
	valid, err := v.IsValid(koreanText, "EN-US")
	if err == nil {
		t.Error("expected error for untranslated Korean text")
	}
	if valid {
		t.Error("expected valid=false for Korean text with English target")
	}
}

func TestIsValid_JapaneseTarget(t *testing.T) {
	v := New()

	japaneseText := "これは日本語のテキストです。バリデーターが正しく検出できるか確認します。"
	valid, err := v.IsValid(japaneseText, "JA")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !valid {
		t.Error("expected valid=true when detecting Japanese as Japanese")
	}
}
