package tts

/*
#cgo LDFLAGS: -lespeak-ng
#include <stdlib.h>
#include <string.h>
#include <espeak-ng/speak_lib.h>

static int
tts_init(void)
{
	return espeak_Initialize(AUDIO_OUTPUT_SYNCH_PLAYBACK, 500, NULL, 0);
}

// tts_first_voice copies the name of the first installed voice into buf.
static int
tts_first_voice(char *buf, int n)
{
	const espeak_VOICE **voices = espeak_ListVoices(NULL);
	if (!voices || !voices[0] || !voices[0]->name)
	{ return -1; }

	strncpy(buf, voices[0]->name, n - 1);
	buf[n - 1] = '\0';
	return 0;
}

static int
tts_say(const char *text)
{
	if (!text)
	{ return -1; }

	espeak_ERROR rc = espeak_Synth(text, strlen(text) + 1, 0, POS_CHARACTER, 0,
		espeakCHARS_AUTO, NULL, NULL);
	if (rc != EE_OK)
	{ return (int)rc; }

	return (int)espeak_Synchronize();
}
*/
import "C"

import (
	"errors"
	"fmt"
	log "log/slog"
	"strings"
	"sync"
	"unsafe"
)

const DefaultRate = 160

type Options struct {
	Voice string // espeak voice name; empty picks the first installed voice
	Rate  int    // words per minute
}

// Espeak is a process-wide espeak-ng handle. Speak blocks until playback ends.
type Espeak struct {
	mu     sync.Mutex
	closed bool
}

func NewEspeak(opt Options) (*Espeak, error) {
	if rc := C.tts_init(); rc < 0 {
		return nil, fmt.Errorf("espeak_Initialize failed: %d", int(rc))
	}

	voice := opt.Voice
	if voice == "" {
		buf := (*C.char)(C.malloc(256))
		defer C.free(unsafe.Pointer(buf))
		if C.tts_first_voice(buf, 256) == 0 {
			voice = C.GoString(buf)
		}
	}
	if voice != "" {
		cvoice := C.CString(voice)
		defer C.free(unsafe.Pointer(cvoice))
		if rc := C.espeak_SetVoiceByName(cvoice); rc != C.EE_OK {
			C.espeak_Terminate()
			return nil, fmt.Errorf("set voice %q: %d", voice, int(rc))
		}
	}

	rate := opt.Rate
	if rate <= 0 {
		rate = DefaultRate
	}
	C.espeak_SetParameter(C.espeakRATE, C.int(rate), 0)

	log.Debug("Speech engine ready", "voice", voice, "rate", rate)
	return &Espeak{}, nil
}

func (e *Espeak) Speak(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return errors.New("speech engine closed")
	}

	ctext := C.CString(text)
	defer C.free(unsafe.Pointer(ctext))

	if rc := C.tts_say(ctext); rc != 0 {
		return fmt.Errorf("espeak synth failed: %d", int(rc))
	}
	return nil
}

// Close stops any speech in progress and releases the engine.
func (e *Espeak) Close() error {
	C.espeak_Cancel()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true

	if rc := C.espeak_Terminate(); rc != C.EE_OK {
		return fmt.Errorf("espeak_Terminate failed: %d", int(rc))
	}
	return nil
}
