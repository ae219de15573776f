package mirror

// InvokeFunc is the global name under which the host registers its
// dispatcher before the prelude runs. The prelude captures it and deletes
// the global.
const InvokeFunc = "__jsbridge_invoke"

// HoldSlot is the hidden global the host parks an evaluation result in
// before asking the prelude to describe it.
const HoldSlot = "__jsbridge_hold"

// Namespace is the non-enumerable global holding the prelude helpers.
const Namespace = "__jsbridge"

// PreludeJS installs globalThis.__jsbridge. It speaks the wire document
// format of internal/wire:
//
//	revive(node)   wire node -> engine value ("fn" nodes become bridged functions)
//	describe(v)    engine value -> wire node; bad elements are skipped, cycles become null
//	encode(v)      JSON text of describe(v)
//	typeOf(v)      undefined|null|boolean|number|string|array|function|object|unknown
//	ensure(name)   get-or-create a global object
//	take(slot)     encode and delete a parked global
//	bridge(name)   engine function that dispatches to a host callable by name
const PreludeJS = `
(function(g) {
	var invoke = g.__jsbridge_invoke;
	delete g.__jsbridge_invoke;

	function numberNode(v) {
		if (v !== v) return {t: "num", s: "NaN"};
		if (v === Infinity) return {t: "num", s: "Infinity"};
		if (v === -Infinity) return {t: "num", s: "-Infinity"};
		if (v === 0 && 1 / v < 0) return {t: "num", s: "-0"};
		return {t: "num", s: String(v)};
	}

	function describe(v, path) {
		if (v === null || v === undefined) return {t: "null"};
		switch (typeof v) {
		case "boolean": return {t: "bool", b: v};
		case "number": return numberNode(v);
		case "bigint": return {t: "big", s: v.toString()};
		case "string": return {t: "str", s: v};
		case "function": return {t: "func"};
		case "object": break;
		default: return {t: "null"};
		}
		if (path.indexOf(v) !== -1) return {t: "null"};
		path.push(v);
		try {
			if (Array.isArray(v)) {
				var items = [];
				var n = v.length;
				for (var i = 0; i < n; i++) {
					try { items.push(describe(v[i], path)); } catch (e) {}
				}
				return {t: "arr", items: items};
			}
			var props = [];
			var keys;
			try { keys = Object.keys(v); } catch (e) { keys = []; }
			for (var j = 0; j < keys.length; j++) {
				try { props.push({k: keys[j], v: describe(v[keys[j]], path)}); } catch (e) {}
			}
			return {t: "obj", props: props};
		} finally {
			path.pop();
		}
	}

	function encode(v) {
		return JSON.stringify(describe(v, []));
	}

	function revive(n) {
		if (n === null || typeof n !== "object") return null;
		switch (n.t) {
		case "bool": return n.b === true;
		case "num": return Number(n.s);
		case "str": return n.s === undefined ? "" : n.s;
		case "arr":
			var a = [];
			var items = n.items || [];
			for (var i = 0; i < items.length; i++) a.push(revive(items[i]));
			return a;
		case "obj":
			var o = {};
			var props = n.props || [];
			for (var j = 0; j < props.length; j++) o[props[j].k] = revive(props[j].v);
			return o;
		case "fn": return bridge(n.s);
		default: return null;
		}
	}

	function bridge(name) {
		return function() {
			var args = [];
			for (var i = 0; i < arguments.length; i++) {
				try { args.push(describe(arguments[i], [])); } catch (e) {}
			}
			var raw = invoke(name, JSON.stringify(args));
			if (Array.isArray(raw)) raw = raw[0];
			var reply = JSON.parse(raw);
			if (reply.t === "err") {
				throw new Error("host function " + JSON.stringify(name) + " failed: " + (reply.s || "unknown error"));
			}
			return revive(reply);
		};
	}

	function typeOf(v) {
		if (v === undefined) return "undefined";
		if (v === null) return "null";
		switch (typeof v) {
		case "boolean": return "boolean";
		case "number": return "number";
		case "string": return "string";
		case "function": return "function";
		case "object": return Array.isArray(v) ? "array" : "object";
		default: return "unknown";
		}
	}

	function ensure(name) {
		if (name in g) {
			var o = g[name];
			if (o === null || (typeof o !== "object" && typeof o !== "function")) {
				throw new TypeError("global " + JSON.stringify(name) + " is not an object");
			}
			return o;
		}
		var created = {};
		g[name] = created;
		return created;
	}

	function take(slot) {
		var v = g[slot];
		delete g[slot];
		return encode(v);
	}

	Object.defineProperty(g, "__jsbridge", {
		value: Object.freeze({
			revive: revive,
			describe: function(v) { return describe(v, []); },
			encode: encode,
			typeOf: typeOf,
			ensure: ensure,
			take: take,
			bridge: bridge
		}),
		enumerable: false,
		writable: false,
		configurable: false
	});
})(globalThis);
`
