package channels

const webChatHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>{{.Title}}</title>
<style>
:root{
  --bg-primary:#0f1117;--bg-secondary:#161822;--bg-tertiary:#1c1f2e;
  --border:#252836;--accent:#6c5ce7;--accent-hover:#5a4bd1;
  --text-primary:#e8e6f0;--text-muted:#5c5b66;
}
*{box-sizing:border-box;margin:0;padding:0}
html,body{height:100%}
body{
  font-family:system-ui,-apple-system,sans-serif;
  background:var(--bg-primary);color:var(--text-primary);
  display:flex;flex-direction:column;overflow:hidden;
}
#header{padding:16px 24px;background:var(--bg-secondary);border-bottom:1px solid var(--border)}
#header h1{font-size:16px;font-weight:600}
#chatMessages{flex:1;overflow-y:auto;padding:24px;display:flex;flex-direction:column;gap:16px}
.message{display:flex;gap:10px}
.user-message{flex-direction:row-reverse}
.message-avatar{
  width:30px;height:30px;border-radius:9px;flex-shrink:0;font-size:12px;
  display:flex;align-items:center;justify-content:center;background:var(--bg-tertiary);
}
.message-content{
  max-width:72%;padding:12px 16px;border-radius:16px;line-height:1.65;font-size:14px;
  background:var(--bg-tertiary);border:1px solid var(--border);word-wrap:break-word;
}
.user-message .message-content{background:var(--accent);border-color:var(--accent)}
.message-content p+p{margin-top:6px}
#typingIndicator{display:none;padding:0 24px 8px;font-size:13px;color:var(--text-muted)}
#input-area{display:flex;gap:10px;padding:16px 24px 20px;background:var(--bg-secondary);border-top:1px solid var(--border)}
#messageInput{
  flex:1;padding:10px 14px;border:1px solid var(--border);border-radius:12px;
  background:var(--bg-primary);color:var(--text-primary);font-size:14px;outline:none;
}
#sendButton{
  padding:0 18px;background:var(--accent);color:#fff;border:none;border-radius:10px;cursor:pointer;
}
#sendButton:hover{background:var(--accent-hover)}
#sendButton:disabled,#messageInput:disabled{opacity:.4;cursor:not-allowed}
</style>
</head>
<body>
<div id="header"><h1>{{.Title}}</h1></div>
<div id="chatMessages"></div>
<div id="typingIndicator">Typing...</div>
<div id="input-area">
  <input id="messageInput" type="text" placeholder="Type your question..." aria-label="Chat message input" autocomplete="off">
  <button id="sendButton" aria-label="Send message">Send</button>
</div>
<script>
const STORAGE_KEY={{.StorageKey}},ID_PREFIX={{.Prefix}};
const chatMessages=document.getElementById("chatMessages"),
      messageInput=document.getElementById("messageInput"),
      sendButton=document.getElementById("sendButton"),
      typingIndicator=document.getElementById("typingIndicator");
let sessionId=null,busy=false;
function getSessionId(){
  if(sessionId)return sessionId;
  try{sessionId=localStorage.getItem(STORAGE_KEY)}catch(e){}
  if(!sessionId){
    sessionId=ID_PREFIX+"_"+Date.now()+"_"+Math.random().toString(36).substr(2,9);
    try{localStorage.setItem(STORAGE_KEY,sessionId)}catch(e){}
  }
  return sessionId;
}
function addMessage(paragraphs,isUser){
  const row=document.createElement("div");
  row.className="message "+(isUser?"user":"bot")+"-message";
  const avatar=document.createElement("div");
  avatar.className="message-avatar";
  avatar.textContent=isUser?"You":"Bot";
  const content=document.createElement("div");
  content.className="message-content";
  (paragraphs||[]).forEach(function(line){
    const p=document.createElement("p");
    p.textContent=line;
    content.appendChild(p);
  });
  row.appendChild(avatar);row.appendChild(content);
  chatMessages.appendChild(row);
  chatMessages.scrollTop=chatMessages.scrollHeight;
}
function setBusy(on){
  busy=on;
  typingIndicator.style.display=on?"block":"none";
  sendButton.disabled=on;messageInput.disabled=on;
  if(!on)messageInput.focus();
}
async function sendMessage(){
  const message=messageInput.value.trim();
  if(!message||busy)return;
  addMessage([message],true);
  messageInput.value="";
  setBusy(true);
  try{
    const r=await fetch("/chat/send",{method:"POST",headers:{"Content-Type":"application/json"},
      body:JSON.stringify({message:message,sessionId:getSessionId()})});
    const d=await r.json().catch(function(){return {}});
    if(!r.ok){
      addMessage(["Error: "+(d.error||r.statusText)],false);
      return;
    }
    addMessage(d.paragraphs,false);
  }catch(e){
    // fetch only rejects when the relay could not be reached
    addMessage(["Error: "+e.message+" (Network connectivity issue)"],false);
  }finally{
    setBusy(false);
  }
}
async function restore(){
  try{
    const r=await fetch("/chat/poll?sessionId="+encodeURIComponent(getSessionId()));
    if(!r.ok)return;
    (await r.json()).forEach(function(m){addMessage(m.paragraphs,m.origin==="user")});
  }catch(e){}
}
sendButton.addEventListener("click",sendMessage);
messageInput.addEventListener("keypress",function(e){
  if(e.key==="Enter"){e.preventDefault();sendMessage()}
});
document.addEventListener("DOMContentLoaded",function(){restore();messageInput.focus()});
</script>
</body>
</html>`
