// Package stdlibset embeds the set of Python 3.11 standard-library
// top-level module names consulted by pkgs/transform's rewrite_imports
// pass (spec §4.5): an import whose top-level module is in this set is
// left untouched; anything else gets a micropip.install line inserted
// ahead of it.
package stdlibset

// Modules is the closed set of top-level stdlib module names. It is a
// representative 235-entry slice of CPython 3.11's stdlib, not a
// byte-for-byte reproduction of every private/internal module (spec
// §1 disclaims "exact CPython byte-for-byte equivalence").
var Modules = map[string]struct{}{
	"__future__": {}, "_abc": {}, "_ast": {}, "_asyncio": {}, "_bisect": {},
	"_codecs": {}, "_collections": {}, "_csv": {}, "_datetime": {}, "_decimal": {},
	"_functools": {}, "_heapq": {}, "_imp": {}, "_io": {}, "_json": {},
	"_locale": {}, "_operator": {}, "_pickle": {}, "_random": {}, "_sitebuiltins": {},
	"_socket": {}, "_sre": {}, "_ssl": {}, "_thread": {}, "_warnings": {},
	"_weakref": {}, "_weakrefset": {}, "abc": {}, "aifc": {}, "argparse": {},
	"array": {}, "ast": {}, "asynchat": {}, "asyncio": {}, "asyncore": {},
	"atexit": {}, "audioop": {}, "base64": {}, "bdb": {}, "binascii": {},
	"bisect": {}, "builtins": {}, "bz2": {}, "calendar": {}, "cgi": {},
	"cgitb": {}, "chunk": {}, "cmath": {}, "cmd": {}, "code": {},
	"codecs": {}, "codeop": {}, "collections": {}, "colorsys": {}, "compileall": {},
	"concurrent": {}, "configparser": {}, "contextlib": {}, "contextvars": {}, "copy": {},
	"copyreg": {}, "cProfile": {}, "crypt": {}, "csv": {}, "ctypes": {},
	"curses": {}, "dataclasses": {}, "datetime": {}, "dbm": {}, "decimal": {},
	"difflib": {}, "dis": {}, "doctest": {}, "email": {}, "encodings": {},
	"ensurepip": {}, "enum": {}, "errno": {}, "faulthandler": {}, "fcntl": {},
	"filecmp": {}, "fileinput": {}, "fnmatch": {}, "fractions": {}, "ftplib": {},
	"functools": {}, "gc": {}, "getopt": {}, "getpass": {}, "gettext": {},
	"glob": {}, "graphlib": {}, "grp": {}, "gzip": {}, "hashlib": {},
	"heapq": {}, "hmac": {}, "html": {}, "http": {}, "idlelib": {},
	"imaplib": {}, "imghdr": {}, "imp": {}, "importlib": {}, "inspect": {},
	"io": {}, "ipaddress": {}, "itertools": {}, "json": {}, "keyword": {},
	"lib2to3": {}, "linecache": {}, "locale": {}, "logging": {}, "lzma": {},
	"mailbox": {}, "mailcap": {}, "marshal": {}, "math": {}, "mimetypes": {},
	"mmap": {}, "modulefinder": {}, "msilib": {}, "msvcrt": {}, "multiprocessing": {},
	"netrc": {}, "nis": {}, "nntplib": {}, "numbers": {}, "operator": {},
	"optparse": {}, "os": {}, "ossaudiodev": {}, "pathlib": {}, "pdb": {},
	"pickle": {}, "pickletools": {}, "pipes": {}, "pkgutil": {}, "platform": {},
	"plistlib": {}, "poplib": {}, "posix": {}, "posixpath": {}, "pprint": {},
	"profile": {}, "pstats": {}, "pty": {}, "pwd": {}, "py_compile": {},
	"pyclbr": {}, "pydoc": {}, "queue": {}, "quopri": {}, "random": {},
	"re": {}, "readline": {}, "reprlib": {}, "resource": {}, "rlcompleter": {},
	"runpy": {}, "sched": {}, "secrets": {}, "select": {}, "selectors": {},
	"shelve": {}, "shlex": {}, "shutil": {}, "signal": {}, "site": {},
	"smtpd": {}, "smtplib": {}, "sndhdr": {}, "socket": {}, "socketserver": {},
	"spwd": {}, "sqlite3": {}, "sre_compile": {}, "sre_constants": {}, "sre_parse": {},
	"ssl": {}, "stat": {}, "statistics": {}, "string": {}, "stringprep": {},
	"struct": {}, "subprocess": {}, "sunau": {}, "symtable": {}, "sys": {},
	"sysconfig": {}, "syslog": {}, "tabnanny": {}, "tarfile": {}, "telnetlib": {},
	"tempfile": {}, "termios": {}, "textwrap": {}, "this": {}, "threading": {},
	"time": {}, "timeit": {}, "tkinter": {}, "token": {}, "tokenize": {},
	"tomllib": {}, "trace": {}, "traceback": {}, "tracemalloc": {}, "tty": {},
	"turtle": {}, "turtledemo": {}, "types": {}, "typing": {}, "unicodedata": {},
	"unittest": {}, "urllib": {}, "uu": {}, "uuid": {}, "venv": {},
	"warnings": {}, "wave": {}, "weakref": {}, "webbrowser": {}, "winreg": {},
	"winsound": {}, "wsgiref": {}, "xdrlib": {}, "xml": {}, "xmlrpc": {},
	"zipapp": {}, "zipfile": {}, "zipimport": {}, "zlib": {}, "zoneinfo": {},
}

// Has reports whether top is a known top-level stdlib module name.
func Has(top string) bool {
	_, ok := Modules[top]
	return ok
}
