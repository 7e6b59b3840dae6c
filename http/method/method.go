package method

type Method uint8

const (
	Unknown Method = iota
	DELETE
	GET
	HEAD
	POST
	PUT
	CONNECT
	OPTIONS
	TRACE
	COPY
	LOCK
	MKCOL
	MOVE
	PROPFIND
	PROPPATCH
	SEARCH
	UNLOCK
	BIND
	REBIND
	UNBIND
	ACL
	REPORT
	MKACTIVITY
	CHECKOUT
	MERGE
	MSEARCH
	NOTIFY
	SUBSCRIBE
	UNSUBSCRIBE
	PATCH
	PURGE
	MKCALENDAR
	LINK
	UNLINK

	// Count is the last one enum, so contains the greatest integer value of all the
	// methods. So real number of methods is lower by 1
	Count = iota - 1
)

// MaxLength is the length of the longest known method token.
const MaxLength = len("UNSUBSCRIBE")

var names = [...]string{
	Unknown:     "UNKNOWN",
	DELETE:      "DELETE",
	GET:         "GET",
	HEAD:        "HEAD",
	POST:        "POST",
	PUT:         "PUT",
	CONNECT:     "CONNECT",
	OPTIONS:     "OPTIONS",
	TRACE:       "TRACE",
	COPY:        "COPY",
	LOCK:        "LOCK",
	MKCOL:       "MKCOL",
	MOVE:        "MOVE",
	PROPFIND:    "PROPFIND",
	PROPPATCH:   "PROPPATCH",
	SEARCH:      "SEARCH",
	UNLOCK:      "UNLOCK",
	BIND:        "BIND",
	REBIND:      "REBIND",
	UNBIND:      "UNBIND",
	ACL:         "ACL",
	REPORT:      "REPORT",
	MKACTIVITY:  "MKACTIVITY",
	CHECKOUT:    "CHECKOUT",
	MERGE:       "MERGE",
	MSEARCH:     "M-SEARCH",
	NOTIFY:      "NOTIFY",
	SUBSCRIBE:   "SUBSCRIBE",
	UNSUBSCRIBE: "UNSUBSCRIBE",
	PATCH:       "PATCH",
	PURGE:       "PURGE",
	MKCALENDAR:  "MKCALENDAR",
	LINK:        "LINK",
	UNLINK:      "UNLINK",
}

// List contains all the supported HTTP methods. They are sorted by their integer value, however
// Unknown method is not included. So in order to index the List, you must subtract 1 first.
var List = func() []Method {
	list := make([]Method, 0, Count)
	for m := Unknown + 1; m <= Count; m++ {
		list = append(list, m)
	}

	return list
}()

// methodsMap buckets the methods by their length and first character, so a lookup
// costs a couple of string comparisons at most.
var methodsMap = func() (m [MaxLength + 1][26][]Method) {
	for _, method := range List {
		str := method.String()
		bucket := &m[len(str)][str[0]-'A']
		*bucket = append(*bucket, method)
	}

	return m
}()

func (m Method) String() string {
	if int(m) >= len(names) {
		return names[Unknown]
	}

	return names[m]
}

// Parse returns the method by its case-sensitive token. Unknown is returned for
// anything not listed.
func Parse(str string) Method {
	if len(str) == 0 || len(str) > MaxLength || str[0] < 'A' || str[0] > 'Z' {
		return Unknown
	}

	for _, method := range methodsMap[len(str)][str[0]-'A'] {
		if names[method] == str {
			return method
		}
	}

	return Unknown
}
