package keyword

// Vocabularies are stored normalized (lowercase, no diacritics).
var (
	contextWords = newSet(
		"ce", "soir", "demain", "aujourd", "maintenant", "bientot", "plus", "tard",
	)

	// manger and boire are action words: they carry the intent of most
	// food and drink queries and are never treated as stop-words.
	primaryWords = newSet(
		"kart", "karting", "bowling", "laser", "escape", "game", "paintball", "tir",
		"archery", "escalade", "piscine", "cinema", "theatre", "concert", "danse",
		"danser", "boire", "manger", "restaurant", "bar", "cafe", "billard", "golf",
		"minigolf", "musee", "spa", "massage", "karaoke", "quiz", "biere", "cocktail",
		"vin", "pizza", "burger", "brunch", "sushi", "jeux", "vr", "trampoline",
		"patinoire", "yoga", "exposition", "spectacle", "club", "boite", "brasserie",
		"pub", "creperie", "glacier", "patisserie",
	)

	stopWords = newSet(
		"de", "le", "la", "les", "un", "une", "des", "du", "faire", "decouvrir",
		"avec", "mes", "mon", "ma", "pour", "l", "d", "au", "aux", "envie", "sortir",
		"aller", "voir", "trouver", "et", "en", "je", "on", "qu", "hui", "se", "sur",
		"chez", "dans", "entre", "amis", "veux", "voudrais", "quelque", "chose",
	)
)

type set map[string]struct{}

func newSet(words ...string) set {
	s := make(set, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

func (s set) has(w string) bool {
	_, ok := s[w]
	return ok
}
