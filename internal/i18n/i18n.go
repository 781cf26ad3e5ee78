// Package i18n holds the bot's user-facing phrases in the languages the bot
// speaks to users in, backed by an x/text message catalog. Phrases missing
// in a language fall back to English.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Key identifies a phrase.
type Key string

const (
	// Welcome takes the formatted list of supported languages.
	Welcome           Key = "welcome"
	TranslationHeader Key = "translation_header"
	TranscriptHeader  Key = "transcript_header"
	AudioCaption      Key = "audio_caption"
	// Translating and TranslatingText take the target language name.
	Translating     Key = "translating"
	TranslatingText Key = "translating_text"
	ChooseLanguage  Key = "choose_language"
	// LanguageSaved takes the chosen language name.
	LanguageSaved     Key = "language_saved"
	NoSpeech          Key = "no_speech"
	Undetected        Key = "undetected"
	// Unsupported takes the detected language name and code.
	Unsupported       Key = "unsupported"
	TranslationFailed Key = "translation_failed"
	InternalError     Key = "internal_error"
)

// Default is the fallback interface language.
var Default = language.English

var phrases = map[Key]map[string]string{
	Welcome: {
		"en": "Hello! I support the following languages:\n%s\n\nSend me a text or voice message in any of these languages, and I'll translate it to your preferred language.\nUse /language to choose it.",
		"ru": "Привет! Я поддерживаю следующие языки:\n%s\n\nОтправь мне текстовое или голосовое сообщение на любом из этих языков, и я переведу его на твой предпочитаемый язык.\nВыбрать его можно командой /language.",
		"es": "¡Hola! Admito los siguientes idiomas:\n%s\n\nEnvíame un mensaje de texto o de voz en cualquiera de estos idiomas y lo traduciré a tu idioma preferido.\nUsa /language para elegirlo.",
		"fr": "Bonjour! Je prends en charge les langues suivantes:\n%s\n\nEnvoyez-moi un message texte ou vocal dans l'une de ces langues, et je le traduirai dans votre langue préférée.\nUtilisez /language pour la choisir.",
		"de": "Hallo! Ich unterstütze die folgenden Sprachen:\n%s\n\nSenden Sie mir eine Text- oder Sprachnachricht in einer dieser Sprachen, und ich werde sie in Ihre bevorzugte Sprache übersetzen.\nMit /language wählen Sie sie aus.",
		"it": "Ciao! Supporto le seguenti lingue:\n%s\n\nInviami un messaggio di testo o vocale in una di queste lingue e lo tradurrò nella tua lingua preferita.\nUsa /language per sceglierla.",
		"pt": "Olá! Eu suporto os seguintes idiomas:\n%s\n\nEnvie-me uma mensagem de texto ou de voz em qualquer um desses idiomas, e eu a traduzirei para o seu idioma preferido.\nUse /language para escolhê-lo.",
		"zh": "你好！我支持以下语言：\n%s\n\n用这些语言中的任何一种向我发送文本或语音消息，我会将其翻译成你喜欢的语言。\n使用 /language 进行选择。",
		"ja": "こんにちは！次の言語をサポートしています：\n%s\n\nこれらの言語のいずれかでテキストメッセージまたは音声メッセージを送信してください。あなたの希望する言語に翻訳します。\n/language で言語を選べます。",
		"ko": "안녕하세요! 저는 다음 언어를 지원합니다:\n%s\n\n이러한 언어 중 하나로 텍스트 또는 음성 메시지를 보내주시면 선호하는 언어로 번역해 드리겠습니다.\n/language 로 언어를 선택하세요.",
		"ar": "مرحبًا! أنا أدعم اللغات التالية:\n%s\n\nأرسل لي رسالة نصية أو صوتية بأي من هذه اللغات، وسأترجمها إلى لغتك المفضلة.\nاستخدم /language لاختيارها.",
	},
	TranslationHeader: {
		"en": "📝 Translation:",
		"es": "📝 Traducción:",
		"fr": "📝 Traduction:",
		"de": "📝 Übersetzung:",
		"it": "📝 Traduzione:",
		"pt": "📝 Tradução:",
		"ar": "📝 الترجمة:",
		"ja": "📝 翻訳:",
		"zh": "📝 翻译:",
		"ko": "📝 번역:",
		"ru": "📝 Перевод:",
	},
	TranscriptHeader: {
		"en": "🎙 Recognized text:",
		"ru": "🎙 Распознанный текст:",
		"es": "🎙 Texto reconocido:",
		"fr": "🎙 Texte reconnu:",
		"de": "🎙 Erkannter Text:",
		"it": "🎙 Testo riconosciuto:",
		"pt": "🎙 Texto reconhecido:",
		"zh": "🎙 识别的文本：",
		"ja": "🎙 認識されたテキスト：",
		"ko": "🎙 인식된 텍스트:",
		"ar": "🎙 النص المعترف به:",
	},
	AudioCaption: {
		"en": "🔊 Audio translation",
		"es": "🔊 Traducción de audio",
		"fr": "🔊 Traduction audio",
		"de": "🔊 Audio-Übersetzung",
		"it": "🔊 Traduzione audio",
		"pt": "🔊 Tradução de áudio",
		"ar": "🔊 الترجمة الصوتية",
		"ja": "🔊 音声翻訳",
		"zh": "🔊 语音翻译",
		"ko": "🔊 음성 번역",
		"ru": "🔊 Озвученный перевод",
	},
	Translating: {
		"en": "Translating to %s... Your audio will be ready soon.",
		"ru": "Перевод на %s... Ваше аудио будет готово в ближайшее время.",
		"es": "Traduciendo al %s... Tu audio estará listo pronto.",
		"fr": "Traduction en %s... Votre audio sera bientôt prêt.",
		"de": "Übersetzung ins %s... Ihre Audiodatei wird in Kürze fertig sein.",
		"it": "Traduzione in %s... Il tuo audio sarà pronto a breve.",
		"pt": "Traduzindo para %s... Seu áudio estará pronto em breve.",
		"zh": "正在翻译成%s...您的音频很快就会准备好。",
		"ja": "%sに翻訳中...あなたの音声はまもなく準備ができます。",
		"ko": "%s(으)로 번역 중... 오디오가 곧 준비됩니다.",
		"ar": "الترجمة إلى %s... سيكون الصوت الخاص بك جاهزًا قريبًا.",
	},
	TranslatingText: {
		"en": "Translating to %s...",
		"ru": "Перевод на %s...",
		"es": "Traduciendo al %s...",
		"fr": "Traduction en %s...",
		"de": "Übersetzung ins %s...",
		"it": "Traduzione in %s...",
		"pt": "Traduzindo para %s...",
	},
	ChooseLanguage: {
		"en": "Which language should I translate your messages into?",
		"ru": "На какой язык переводить ваши сообщения?",
		"es": "¿A qué idioma debo traducir tus mensajes?",
		"fr": "Dans quelle langue dois-je traduire vos messages?",
		"de": "In welche Sprache soll ich Ihre Nachrichten übersetzen?",
	},
	LanguageSaved: {
		"en": "✅ Translations will now be in %s.",
		"ru": "✅ Теперь переводы будут на языке: %s.",
		"es": "✅ Las traducciones ahora serán en %s.",
		"fr": "✅ Les traductions seront désormais en %s.",
		"de": "✅ Übersetzungen erfolgen jetzt auf %s.",
	},
	NoSpeech: {
		"en": "Could not recognize speech.",
		"ru": "Не удалось распознать речь.",
	},
	Undetected: {
		"en": "Could not detect the language of the text. Please try again.",
		"ru": "Не удалось определить язык текста. Пожалуйста, попробуйте еще раз.",
	},
	Unsupported: {
		"en": "The language %s (%s) is not supported. Please use one of the supported languages.",
		"ru": "Язык %s (%s) не поддерживается. Пожалуйста, используйте один из поддерживаемых языков.",
	},
	TranslationFailed: {
		"en": "Could not translate the text.",
		"ru": "Не удалось перевести текст.",
	},
	InternalError: {
		"en": "Something went wrong. Please try again later.",
		"ru": "Что-то пошло не так. Пожалуйста, попробуйте позже.",
	},
}

var (
	tags    []language.Tag
	matcher language.Matcher
	cat     catalog.Catalog
)

func init() {
	seen := map[string]bool{}
	tags = []language.Tag{Default}
	seen[Default.String()] = true
	for _, byLang := range phrases {
		for code := range byLang {
			if !seen[code] {
				seen[code] = true
				tags = append(tags, language.MustParse(code))
			}
		}
	}

	b := catalog.NewBuilder(catalog.Fallback(Default))
	for key, byLang := range phrases {
		for _, tag := range tags {
			text, ok := byLang[tag.String()]
			if !ok {
				text = byLang[Default.String()]
			}
			if err := b.SetString(tag, string(key), text); err != nil {
				panic("i18n: " + err.Error())
			}
		}
	}
	cat = b
	matcher = language.NewMatcher(tags)
}

// Tag returns the catalog language best matching locale (a Telegram
// language_code such as "pt-br"). Unknown locales get English.
func Tag(locale string) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil {
		return Default
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return Default
	}
	return tags[idx]
}

// Text returns the phrase for key in the interface language closest to
// locale, formatted with args.
func Text(locale string, key Key, args ...any) string {
	return message.NewPrinter(Tag(locale), message.Catalog(cat)).Sprintf(string(key), args...)
}
